package notification

import (
	"strings"
	"testing"
)

var testAlert = Alert{
	ProductName: "Widget Deluxe 3000",
	ProductURL:  "https://www.example.com/p/1",
	Site:        "Amazon",
	OldPrice:    75,
	NewPrice:    45,
	TargetPrice: 50,
}

func TestPlainBody(t *testing.T) {
	body := plainBody(testAlert)
	for _, want := range []string{
		"Widget Deluxe 3000",
		"Old Price: $75.00",
		"NEW PRICE: $45.00",
		"Target Price: $50.00",
		"You save: $30.00 (40.0% off)",
		"https://www.example.com/p/1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("plain body missing %q:\n%s", want, body)
		}
	}
}

func TestHTMLBodyEscapesName(t *testing.T) {
	a := testAlert
	a.ProductName = `Widget <script>alert("x")</script>`
	body := htmlBody(a)
	if strings.Contains(body, "<script>") {
		t.Error("html body must escape the product name")
	}
	if !strings.Contains(body, "Now: $45.00") {
		t.Errorf("html body missing new price:\n%s", body)
	}
}

func TestSavingsZeroOldPrice(t *testing.T) {
	amount, percent := savings(Alert{OldPrice: 0, NewPrice: 10})
	if amount != -10 || percent != 0 {
		t.Errorf("savings = %v, %v", amount, percent)
	}
}
