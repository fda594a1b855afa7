package client

import (
	"github.com/PuerkitoBio/goquery"

	"pricewatch/internal/model"
)

// Best Buy renders the real price into screen-reader spans.
var bestbuyPriceRules = []rule{
	{selector: ".pricing-current-price .sr-only"},
	{selector: "div.priceView-customer-price span"},
	{selector: "span.sr-only"},
	{selector: ".visuallyhidden"},
}

var bestbuyTitleRules = []rule{
	{selector: "h1.heading-5.v-fw-regular"},
	{selector: `h1[itemprop="name"]`},
	{selector: "div.sku-title h1"},
	{selector: "h1"},
}

var bestbuyImageRules = []rule{
	{selector: "img.primary-image", attr: "src"},
	{selector: `img[itemprop="image"]`, attr: "src"},
}

type bestbuyExtractor struct{}

func (bestbuyExtractor) Site() string { return "Best Buy" }

func (e bestbuyExtractor) Extract(doc *goquery.Document, url string, maxPrice float64) (model.ProductInfo, error) {
	var info model.ProductInfo
	info.PriceText = firstPriceMatch(doc, bestbuyPriceRules, maxPrice)
	info.Title = firstMatch(doc, bestbuyTitleRules)
	if info.Title == "" {
		info.Title = "Unknown Product"
	}
	info.ImageURL = firstMatch(doc, bestbuyImageRules)
	info.Availability = firstMatch(doc, []rule{
		{selector: "button.add-to-cart-button"},
		{selector: "div.fulfillment-add-to-cart-button button"},
	})
	return info, nil
}
