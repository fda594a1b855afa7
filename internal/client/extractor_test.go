package client

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"pricewatch/internal/parse"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func TestExtractorForURL(t *testing.T) {
	tests := []struct {
		url  string
		site string
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "Amazon"},
		{"https://www.ebay.com/itm/123456", "eBay"},
		{"https://www.walmart.com/ip/123", "Walmart"},
		{"https://www.target.com/p/-/A-123", "Target"},
		{"https://www.bestbuy.com/site/123.p", "Best Buy"},
		{"https://shop.example.com/p/1", "Generic"},
	}
	for _, tt := range tests {
		if got := ExtractorForURL(tt.url).Site(); got != tt.site {
			t.Errorf("ExtractorForURL(%q).Site() = %q, want %q", tt.url, got, tt.site)
		}
	}
}

func TestAmazonExtract(t *testing.T) {
	html := `<html><body>
		<span id="productTitle"> Widget Deluxe 3000 </span>
		<span class="a-price"><span class="a-offscreen">$49.99</span></span>
		<div id="availability"><span>In Stock</span></div>
		<a id="bylineInfo">WidgetCo</a>
	</body></html>`
	info, err := amazonExtractor{}.Extract(docFromString(t, html), "https://www.amazon.com/dp/B0TEST", parse.DefaultMaxPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Title != "Widget Deluxe 3000" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.PriceText != "$49.99" {
		t.Errorf("PriceText = %q", info.PriceText)
	}
	if info.Seller != "WidgetCo" {
		t.Errorf("Seller = %q", info.Seller)
	}
}

func TestAmazonExtractSkipsUnparsableCandidates(t *testing.T) {
	// The first matching selector holds a label, not a price; the cascade
	// must move on to the element that actually parses.
	html := `<html><body>
		<span class="a-price"><span class="a-offscreen">See price in cart</span></span>
		<span id="priceblock_ourprice">$19.99</span>
	</body></html>`
	info, err := amazonExtractor{}.Extract(docFromString(t, html), "https://www.amazon.com/dp/B0TEST", parse.DefaultMaxPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.PriceText != "$19.99" {
		t.Errorf("PriceText = %q, want $19.99", info.PriceText)
	}
}

func TestAmazonExtractSkipsCandidatesAboveCeiling(t *testing.T) {
	// A configured price ceiling applies inside the cascade too: a
	// candidate above it must lose to a later rule that parses in range.
	html := `<html><body>
		<span class="a-price"><span class="a-offscreen">$1,500.00</span></span>
		<span id="priceblock_ourprice">$19.99</span>
	</body></html>`
	info, err := amazonExtractor{}.Extract(docFromString(t, html), "https://www.amazon.com/dp/B0TEST", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.PriceText != "$19.99" {
		t.Errorf("PriceText = %q, want $19.99", info.PriceText)
	}
}

func TestAmazonExtractUnavailable(t *testing.T) {
	html := `<html><body>
		<span id="productTitle">Gone Widget</span>
		<div id="availability"><span class="a-color-price">Currently unavailable.</span></div>
	</body></html>`
	_, err := amazonExtractor{}.Extract(docFromString(t, html), "https://www.amazon.com/dp/B0GONE", parse.DefaultMaxPrice)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestEbayExtractEnded(t *testing.T) {
	html := `<html><body>
		<h1 class="it-ttl">Old Listing</h1>
		<span class="vi-end-lb">This listing has ended</span>
	</body></html>`
	_, err := ebayExtractor{}.Extract(docFromString(t, html), "https://www.ebay.com/itm/1", parse.DefaultMaxPrice)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestEbayExtractEndedWithFinalPrice(t *testing.T) {
	html := `<html><body>
		<h1 class="it-ttl">Old Listing</h1>
		<span class="vi-end-lb">This listing has ended</span>
		<span class="sold-price">US $42.00</span>
	</body></html>`
	info, err := ebayExtractor{}.Extract(docFromString(t, html), "https://www.ebay.com/itm/1", parse.DefaultMaxPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.PriceText != "US $42.00" {
		t.Errorf("PriceText = %q", info.PriceText)
	}
}

func TestWalmartExtractMetaPrice(t *testing.T) {
	html := `<html><head>
		<meta property="product:price:amount" content="129.00">
	</head><body>
		<h1 itemprop="name">Toaster</h1>
	</body></html>`
	info, err := walmartExtractor{}.Extract(docFromString(t, html), "https://www.walmart.com/ip/1", parse.DefaultMaxPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.PriceText != "129.00" {
		t.Errorf("PriceText = %q", info.PriceText)
	}
	if info.Seller != "Walmart" {
		t.Errorf("Seller = %q, want default Walmart", info.Seller)
	}
}

func TestWalmartExtractOutOfStock(t *testing.T) {
	html := `<html><body>
		<h1 itemprop="name">Toaster</h1>
		<div data-testid="out-of-stock">Out of stock</div>
	</body></html>`
	_, err := walmartExtractor{}.Extract(docFromString(t, html), "https://www.walmart.com/ip/1", parse.DefaultMaxPrice)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestGenericExtract(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="Nice Lamp">
		<meta property="product:price:amount" content="35.50">
	</head><body>
		<div class="price-label">Price:</div>
	</body></html>`
	info, err := genericExtractor{}.Extract(docFromString(t, html), "https://shop.example.com/p/1", parse.DefaultMaxPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Title != "Nice Lamp" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.PriceText != "35.50" {
		t.Errorf("PriceText = %q", info.PriceText)
	}
	if info.Site != "shop.example.com" {
		t.Errorf("Site = %q", info.Site)
	}
}

func TestGenericExtractClassPrice(t *testing.T) {
	html := `<html><body>
		<span class="product-price">$89.95</span>
	</body></html>`
	info, err := genericExtractor{}.Extract(docFromString(t, html), "https://shop.example.com/p/2", parse.DefaultMaxPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.PriceText != "$89.95" {
		t.Errorf("PriceText = %q", info.PriceText)
	}
}
