// Package parse converts free-form price text and product URLs into
// values the rest of the pipeline can trust.
package parse

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMaxPrice is the sanity ceiling against parsing garbage out of a
// page. Values at or above it are rejected.
const DefaultMaxPrice = 1000000

var ErrNoPrice = errors.New("no price value found")

var (
	rangeSplitRegex  = regexp.MustCompile(`\s*[-–]\s*|\s+to\s+`)
	nonPriceRegex    = regexp.MustCompile(`[^\d.,\s-]`)
	numberTokenRegex = regexp.MustCompile(`\d+\.?\d*`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	zeroWidthRegex   = regexp.MustCompile("[\u200b\u200c\u200d\ufeff]")
)

// Currency parses arbitrary price text ("$1,234.56", "€99,99",
// "Price: $49.99", "$10.99 - $19.99") into a single positive float using
// the default sanity ceiling.
func Currency(text string) (float64, error) {
	return CurrencyMax(text, DefaultMaxPrice)
}

// CurrencyMax is Currency with a caller-supplied sanity ceiling.
//
// The separator disambiguation below is order-sensitive: the single-comma
// decimal case must be tried before treating commas as thousands
// separators, otherwise inputs like "99,99" flip meaning.
func CurrencyMax(text string, maxPrice float64) (float64, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, errors.Wrap(ErrNoPrice, "empty price text")
	}

	// Ranges: keep the lower (first) segment.
	if strings.Contains(t, " - ") || strings.Contains(strings.ToLower(t), " to ") {
		parts := rangeSplitRegex.Split(strings.ToLower(t), -1)
		if len(parts) > 0 {
			t = parts[0]
		}
	}

	// Drop currency symbols and surrounding prose.
	t = nonPriceRegex.ReplaceAllString(t, "")

	hasComma := strings.Contains(t, ",")
	hasDot := strings.Contains(t, ".")
	switch {
	case hasComma && !hasDot:
		if strings.Count(t, ",") == 1 {
			parts := strings.Split(t, ",")
			if len(parts) == 2 && len(parts[1]) <= 2 {
				// European decimal comma, e.g. "99,99".
				t = strings.ReplaceAll(t, ",", ".")
			} else {
				t = strings.ReplaceAll(t, ",", "")
			}
		} else {
			t = strings.ReplaceAll(t, ",", "")
		}
	case hasComma && hasDot:
		commaPos := strings.LastIndex(t, ",")
		dotPos := strings.LastIndex(t, ".")
		if commaPos > dotPos && len(t)-commaPos <= 3 {
			// European format "1.234,56".
			t = strings.ReplaceAll(t, ".", "")
			t = strings.ReplaceAll(t, ",", ".")
		} else {
			// US format "1,234.56".
			t = strings.ReplaceAll(t, ",", "")
		}
	}

	token := numberTokenRegex.FindString(t)
	if token == "" {
		return 0, errors.Wrapf(ErrNoPrice, "no numeric token in %q", text)
	}
	price, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrNoPrice, "unparsable token %q in %q", token, text)
	}
	if price <= 0 || price >= maxPrice {
		return 0, errors.Wrapf(ErrNoPrice, "price %v out of bounds (0, %v)", price, maxPrice)
	}
	return price, nil
}

// CleanText collapses whitespace and strips zero-width characters.
func CleanText(text string) string {
	t := strings.TrimSpace(text)
	t = whitespaceRegex.ReplaceAllString(t, " ")
	return zeroWidthRegex.ReplaceAllString(t, "")
}

// ExtractNumber returns the first number found in text.
func ExtractNumber(text string) (float64, bool) {
	token := numberTokenRegex.FindString(text)
	if token == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

var trackingParams = map[string]bool{
	"ref":          true,
	"ref_":         true,
	"tag":          true,
	"linkCode":     true,
	"camp":         true,
	"creative":     true,
	"creativeASIN": true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
}

// NormalizeURL strips tracking query parameters (utm_*, ref, fbclid, ...)
// and the fragment while preserving the remaining parameters in their
// original order. The normalized form is the product's identity in the
// store.
func NormalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid URL: %s", rawURL)
	}

	if u.RawQuery != "" {
		var kept []string
		for _, pair := range strings.Split(u.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key := pair
			if i := strings.Index(pair, "="); i >= 0 {
				key = pair[:i]
			}
			if decoded, err := url.QueryUnescape(key); err == nil {
				key = decoded
			}
			if strings.HasPrefix(key, "utm_") || trackingParams[key] {
				continue
			}
			kept = append(kept, pair)
		}
		u.RawQuery = strings.Join(kept, "&")
	}
	u.Fragment = ""
	return u.String(), nil
}

// SiteName extracts the bare site name ("amazon.com") from a product URL.
func SiteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "unknown"
	}
	return host
}
