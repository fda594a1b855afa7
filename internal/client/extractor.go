package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricewatch/internal/model"
	"pricewatch/internal/parse"
)

// SiteExtractor pulls a ProductInfo out of a fetched page. Implementations
// hold an ordered cascade of selector rules per field; the first rule that
// yields a usable value wins, there is no scoring.
type SiteExtractor interface {
	Site() string
	Extract(doc *goquery.Document, url string, maxPrice float64) (model.ProductInfo, error)
}

var extractors = map[string]SiteExtractor{
	"amazon.com":  amazonExtractor{},
	"ebay.com":    ebayExtractor{},
	"walmart.com": walmartExtractor{},
	"target.com":  targetExtractor{},
	"bestbuy.com": bestbuyExtractor{},
}

// ExtractorForURL picks the extractor for the URL's site, falling back to
// the generic one for unknown domains.
func ExtractorForURL(url string) SiteExtractor {
	if e, ok := extractors[parse.SiteName(url)]; ok {
		return e
	}
	return genericExtractor{}
}

// rule is one attempt in a selector cascade. When attr is set the value is
// read from that attribute instead of the element's text content.
type rule struct {
	selector string
	attr     string
}

func (r rule) valueOf(s *goquery.Selection) string {
	if r.attr != "" {
		v, _ := s.Attr(r.attr)
		return parse.CleanText(v)
	}
	return parse.CleanText(s.Text())
}

// firstMatch returns the first non-empty value produced by the cascade.
func firstMatch(doc *goquery.Document, rules []rule) string {
	for _, r := range rules {
		var out string
		doc.Find(r.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v := r.valueOf(s); v != "" {
				out = v
				return false
			}
			return true
		})
		if out != "" {
			return out
		}
	}
	return ""
}

// firstPriceMatch is firstMatch restricted to values the currency parser
// accepts under the given ceiling. Price-bearing selectors match plenty of
// junk ("Price:" labels, empty spans), so candidates are validated before
// winning the cascade.
func firstPriceMatch(doc *goquery.Document, rules []rule, maxPrice float64) string {
	for _, r := range rules {
		var out string
		doc.Find(r.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v := r.valueOf(s)
			if v == "" {
				return true
			}
			if _, err := parse.CurrencyMax(v, maxPrice); err == nil {
				out = v
				return false
			}
			return true
		})
		if out != "" {
			return out
		}
	}
	return ""
}

// selectionContains reports whether any element matched by selector has
// text containing the given (case-insensitive) marker.
func selectionContains(doc *goquery.Document, selector string, marker string) bool {
	found := false
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.Text()), marker) {
			found = true
			return false
		}
		return true
	})
	return found
}
