package parse

import (
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$19.99", 19.99},
		{"$1,234.56", 1234.56},
		{"99.99", 99.99},
		{"Price: $49.99", 49.99},
		{"$10.99 - $19.99", 10.99},
		{"$10.99 to $19.99", 10.99},
		{"€99,99", 99.99},
		{"1.234,56", 1234.56},
		{"1,234", 1234},
		{"Rp 123,456", 123456},
		{"  $5  ", 5},
		// The minus sign is stripped with the other currency symbols;
		// only the unsigned number token is read.
		{"-5.00", 5},
	}
	for _, tt := range tests {
		got, err := Currency(tt.in)
		if err != nil {
			t.Errorf("Currency(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Currency(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCurrencyRejects(t *testing.T) {
	for _, in := range []string{"", "$0.00", "$9999999", "Rp 1,234,567", "no price here", "free"} {
		if got, err := Currency(in); err == nil {
			t.Errorf("Currency(%q) = %v, want error", in, got)
		}
	}
}

func TestCurrencyIdempotent(t *testing.T) {
	const in = "Price: $1,234.56"
	a, err := Currency(in)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	b, err := Currency(in)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}
	if a != b {
		t.Errorf("Currency not idempotent: %v != %v", a, b)
	}
}

func TestCurrencyMaxCeiling(t *testing.T) {
	if _, err := CurrencyMax("$150.00", 100); err == nil {
		t.Error("expected price above ceiling to be rejected")
	}
	if got, err := CurrencyMax("$150.00", 200); err != nil || got != 150 {
		t.Errorf("CurrencyMax = %v, %v, want 150, nil", got, err)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://example.com/p/1?utm_source=mail&color=blue&utm_campaign=x&size=m#reviews",
			"https://example.com/p/1?color=blue&size=m",
		},
		{
			"https://www.amazon.com/dp/B08N5WRWNW?ref=sr_1_1&tag=foo&keywords=widget",
			"https://www.amazon.com/dp/B08N5WRWNW?keywords=widget",
		},
		{
			"https://example.com/p/1?fbclid=abc&gclid=def&msclkid=ghi",
			"https://example.com/p/1",
		},
		{
			"https://example.com/p/1",
			"https://example.com/p/1",
		},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if err != nil {
			t.Errorf("NormalizeURL(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURLPreservesSurvivorOrder(t *testing.T) {
	got, err := NormalizeURL("https://example.com/p?b=2&utm_medium=x&a=1&c=3")
	if err != nil {
		t.Fatal(err)
	}
	want := "https://example.com/p?b=2&a=1&c=3"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("  a \t b\n\nc  "); got != "a b c" {
		t.Errorf("CleanText = %q", got)
	}
	if got := CleanText("a\u200bb"); got != "ab" {
		t.Errorf("CleanText zero-width = %q", got)
	}
}

func TestSiteName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "amazon.com"},
		{"https://EBAY.com/itm/1234", "ebay.com"},
		{"not a url", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := SiteName(tt.in); got != tt.want {
			t.Errorf("SiteName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
