package client

import (
	"github.com/PuerkitoBio/goquery"

	"pricewatch/internal/model"
)

var targetPriceRules = []rule{
	{selector: `span[data-test="product-price"]`},
	{selector: `[data-test="product-price-value"]`},
	{selector: `span[class*="Price"]`},
	{selector: ".h-price-current"},
}

var targetTitleRules = []rule{
	{selector: `h1[data-test="product-title"]`},
	{selector: `h1[itemprop="name"]`},
	{selector: "h1"},
}

var targetImageRules = []rule{
	{selector: `div[data-test="image-gallery-item-0"] img`, attr: "src"},
	{selector: `img[itemprop="image"]`, attr: "src"},
}

type targetExtractor struct{}

func (targetExtractor) Site() string { return "Target" }

func (e targetExtractor) Extract(doc *goquery.Document, url string, maxPrice float64) (model.ProductInfo, error) {
	var info model.ProductInfo
	info.PriceText = firstPriceMatch(doc, targetPriceRules, maxPrice)
	info.Title = firstMatch(doc, targetTitleRules)
	if info.Title == "" {
		info.Title = "Unknown Product"
	}
	info.ImageURL = firstMatch(doc, targetImageRules)
	info.Availability = firstMatch(doc, []rule{{selector: `div[data-test="fulfillment"] span`}})
	return info, nil
}
