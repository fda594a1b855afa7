package client

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"pricewatch/internal/model"
)

var ebayPriceRules = []rule{
	{selector: "div.x-price-primary span.ux-textspans"},
	{selector: "span.ux-textspans--BOLD"},
	{selector: "div.u-flL span.notranslate"},
	{selector: "div.u-flL.u-tar.vi-acc-del-range__price span"},
	{selector: `span[itemprop="price"]`},
	{selector: "span#prcIsum"},
	{selector: "span#mm-saleDscPrc"},
	{selector: "div.display-price"},
	{selector: "h2.it-ttl span.it-price"},
	{selector: "div.u-flL.w29.vi-acc-del-range__price span"},
	{selector: "div.vi-cc-exp-txt span.vi-acc-del-range__price"},
}

// Final sale price of an ended listing.
var ebayFinalPriceRules = []rule{
	{selector: "span.vi-qtyS-hot-red"},
	{selector: "span.sold-price"},
}

var ebayTitleRules = []rule{
	{selector: "h1.it-ttl"},
	{selector: `h1[itemprop="name"]`},
	{selector: "h1.v-textbox-title"},
	{selector: "div.u-dspn h1"},
	{selector: `h1[data-testid="listing-title"]`},
}

var ebayImageRules = []rule{
	{selector: "img#icImg", attr: "src"},
	{selector: "div.ux-image-carousel img", attr: "src"},
	{selector: `img[itemprop="image"]`, attr: "src"},
}

var ebayConditionRules = []rule{
	{selector: "div.u-flL.condText"},
	{selector: `span[data-testid="condition-value"]`},
	{selector: "div.vi-itm-cond"},
}

var ebaySellerRules = []rule{
	{selector: "span.mbg-nw"},
	{selector: "a.mbg-id"},
	{selector: `span[data-testid="seller-name"]`},
}

type ebayExtractor struct{}

func (ebayExtractor) Site() string { return "eBay" }

func (e ebayExtractor) Extract(doc *goquery.Document, url string, maxPrice float64) (model.ProductInfo, error) {
	var info model.ProductInfo

	priceText := firstPriceMatch(doc, ebayPriceRules, maxPrice)

	// Ended listings hide the live price; try the final sale price before
	// declaring the listing gone.
	if priceText == "" && selectionContains(doc, "span.vi-end-lb", "ended") {
		priceText = firstPriceMatch(doc, ebayFinalPriceRules, maxPrice)
		if priceText == "" {
			return info, errors.Wrapf(ErrUnavailable, "eBay listing has ended: %s", url)
		}
	}

	info.Title = firstMatch(doc, ebayTitleRules)
	if info.Title == "" {
		info.Title = "Unknown Product"
	}
	info.PriceText = priceText
	info.ImageURL = firstMatch(doc, ebayImageRules)
	info.Availability = firstMatch(doc, ebayConditionRules)
	info.Seller = firstMatch(doc, ebaySellerRules)
	info.IsAuction = doc.Find(`span.vi-VR-btnWr button[id*="bidBtn"]`).Length() > 0
	return info, nil
}
