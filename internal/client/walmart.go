package client

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"pricewatch/internal/model"
)

var walmartPriceRules = []rule{
	{selector: `span[itemprop="price"]`},
	{selector: `span[data-automation-id="product-price"]`},
	{selector: `div[data-testid="price-wrap"] span`},
	{selector: "span.inline-flex.flex-column span.f1"},
	{selector: "span.price-main span.price-characteristic"},
	{selector: "div.price-main"},
	{selector: "span.reduced"},
	{selector: "div.prod-PriceSection span"},
	{selector: `meta[property="product:price:amount"]`, attr: "content"},
	{selector: "div.valign-middle span"},
}

var walmartTitleRules = []rule{
	{selector: `h1[itemprop="name"]`},
	{selector: "h1.prod-ProductTitle"},
	{selector: `h1[data-automation-id="product-title"]`},
	{selector: "h1.f3"},
	{selector: "div.prod-title h1"},
}

var walmartImageRules = []rule{
	{selector: `img[data-testid="hero-image"]`, attr: "src"},
	{selector: "div.prod-hero-image img", attr: "src"},
	{selector: `img[itemprop="image"]`, attr: "src"},
}

var walmartAvailabilityRules = []rule{
	{selector: `div[data-testid="fulfillment-badge"] span`},
	{selector: "div.prod-fulfillment-messaging span"},
	{selector: `span[data-automation-id="in-stock"]`},
}

var walmartSellerRules = []rule{
	{selector: `a[data-testid="seller-name"]`},
	{selector: "div.sold-shipped-by a"},
	{selector: "span.sold-by-text"},
}

type walmartExtractor struct{}

func (walmartExtractor) Site() string { return "Walmart" }

func (e walmartExtractor) Extract(doc *goquery.Document, url string, maxPrice float64) (model.ProductInfo, error) {
	var info model.ProductInfo

	priceText := firstPriceMatch(doc, walmartPriceRules, maxPrice)

	if priceText == "" {
		if doc.Find(`div[data-testid="out-of-stock"], button[aria-label*="Out of stock"]`).Length() > 0 ||
			selectionContains(doc, "span", "out of stock") {
			return info, errors.Wrapf(ErrUnavailable, "Walmart product out of stock: %s", url)
		}
	}

	info.Title = firstMatch(doc, walmartTitleRules)
	if info.Title == "" {
		info.Title = "Unknown Product"
	}
	info.PriceText = priceText
	info.ImageURL = firstMatch(doc, walmartImageRules)
	info.Availability = firstMatch(doc, walmartAvailabilityRules)
	info.Seller = firstMatch(doc, walmartSellerRules)
	if info.Seller == "" {
		info.Seller = "Walmart"
	}
	info.HasDeal = doc.Find(`span[data-automation-id="rollback"], div.prod-price-tag, span.reduced-tag`).Length() > 0
	return info, nil
}
