package client

import (
	"github.com/PuerkitoBio/goquery"

	"pricewatch/internal/model"
	"pricewatch/internal/parse"
)

// Fallback cascade of price-bearing attribute and class names common
// across storefronts, meta tags last.
var genericPriceRules = []rule{
	{selector: `span[itemprop="price"]`},
	{selector: `span[itemprop="price"]`, attr: "content"},
	{selector: `meta[property="product:price:amount"]`, attr: "content"},
	{selector: `meta[name="price"]`, attr: "content"},
	{selector: `[data-testid*="price"]`},
	{selector: `[data-test*="price"]`},
	{selector: ".price"},
	{selector: "#price"},
	{selector: `[class*="price"]`},
	{selector: `[id*="price"]`},
	{selector: ".cost"},
	{selector: ".amount"},
	{selector: `[class*="cost"]`},
	{selector: `[class*="amount"]`},
}

var genericTitleRules = []rule{
	{selector: `meta[property="og:title"]`, attr: "content"},
	{selector: `h1[itemprop="name"]`},
	{selector: "h1"},
	{selector: "title"},
}

var genericImageRules = []rule{
	{selector: `meta[property="og:image"]`, attr: "content"},
	{selector: `img[itemprop="image"]`, attr: "src"},
}

type genericExtractor struct{}

func (genericExtractor) Site() string { return "Generic" }

func (e genericExtractor) Extract(doc *goquery.Document, url string, maxPrice float64) (model.ProductInfo, error) {
	var info model.ProductInfo
	info.PriceText = firstPriceMatch(doc, genericPriceRules, maxPrice)
	info.Title = firstMatch(doc, genericTitleRules)
	if info.Title == "" {
		info.Title = "Unknown Product"
	}
	info.ImageURL = firstMatch(doc, genericImageRules)
	info.Availability = firstMatch(doc, []rule{{selector: `[itemprop="availability"]`, attr: "href"}})
	// Unknown storefront: report the bare domain as the site.
	info.Site = parse.SiteName(url)
	return info, nil
}
