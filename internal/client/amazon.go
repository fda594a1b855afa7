package client

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"pricewatch/internal/model"
)

// Amazon keeps many price layouts alive at once, so the cascade is
// intentionally redundant.
var amazonPriceRules = []rule{
	{selector: "span.a-price.a-text-price.a-size-medium.apexPriceToPay span.a-offscreen"},
	{selector: "span.a-price span.a-offscreen"},
	{selector: "span.a-price-current span.a-offscreen"},
	{selector: "span#priceblock_dealprice"},
	{selector: "span#priceblock_ourprice"},
	{selector: "span.a-price.a-text-price.a-size-medium.apexPriceToPay"},
	{selector: "div#apex_desktop span.a-price-whole"},
	{selector: "span.a-price-whole"},
	{selector: "span.a-color-price"},
	{selector: "span.offer-price"},
	{selector: ".a-price-range span.a-price"},
	{selector: "span.a-size-base.a-color-price"},
	{selector: "span.deal-price"},
	{selector: "span.priceBlockDealPriceString"},
}

var amazonTitleRules = []rule{
	{selector: "span#productTitle"},
	{selector: "h1.a-size-large"},
	{selector: "h1#title"},
	{selector: `h1[itemprop="name"]`},
	{selector: "div#title_feature_div h1"},
}

var amazonImageRules = []rule{
	{selector: "img#landingImage", attr: "src"},
	{selector: "div#imgTagWrapperId img", attr: "src"},
	{selector: "img.a-dynamic-image", attr: "src"},
}

var amazonAvailabilityRules = []rule{
	{selector: "div#availability span"},
	{selector: "span.a-size-medium.a-color-success"},
	{selector: "div#availability_feature_div span"},
}

var amazonSellerRules = []rule{
	{selector: "a#bylineInfo"},
	{selector: "div.tabular-buybox-text a"},
	{selector: "span.a-size-small.offer-display-feature-text"},
}

type amazonExtractor struct{}

func (amazonExtractor) Site() string { return "Amazon" }

func (e amazonExtractor) Extract(doc *goquery.Document, url string, maxPrice float64) (model.ProductInfo, error) {
	var info model.ProductInfo

	priceText := firstPriceMatch(doc, amazonPriceRules, maxPrice)

	// The unavailability check has to run before reporting "price not
	// found", otherwise delisted items show up as extraction failures.
	if priceText == "" {
		if selectionContains(doc, "div#availability span.a-color-price", "unavailable") {
			return info, errors.Wrapf(ErrUnavailable, "Amazon product currently unavailable: %s", url)
		}
	}

	info.Title = firstMatch(doc, amazonTitleRules)
	if info.Title == "" {
		info.Title = "Unknown Product"
	}
	info.PriceText = priceText
	info.ImageURL = firstMatch(doc, amazonImageRules)
	info.Availability = firstMatch(doc, amazonAvailabilityRules)
	info.Seller = firstMatch(doc, amazonSellerRules)
	info.HasDeal = doc.Find("span.dealBadge, div.dealBadge").Length() > 0
	return info, nil
}
