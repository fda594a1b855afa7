package model

import "testing"

func TestApplyPriceMonotonicBounds(t *testing.T) {
	var p Product
	for _, price := range []float64{75, 65, 45} {
		p.ApplyPrice(price)
	}
	if p.CurrentPrice == nil || *p.CurrentPrice != 45 {
		t.Errorf("CurrentPrice = %v, want 45", p.CurrentPrice)
	}
	if p.LowestPrice == nil || *p.LowestPrice != 45 {
		t.Errorf("LowestPrice = %v, want 45", p.LowestPrice)
	}
	if p.HighestPrice == nil || *p.HighestPrice != 75 {
		t.Errorf("HighestPrice = %v, want 75", p.HighestPrice)
	}
}

func TestApplyPriceBoundsInvariant(t *testing.T) {
	var p Product
	for _, price := range []float64{45, 75, 65} {
		p.ApplyPrice(price)
		if *p.LowestPrice > *p.CurrentPrice || *p.CurrentPrice > *p.HighestPrice {
			t.Fatalf("invariant violated after %v: lowest=%v current=%v highest=%v",
				price, *p.LowestPrice, *p.CurrentPrice, *p.HighestPrice)
		}
	}
	if *p.LowestPrice != 45 || *p.HighestPrice != 75 {
		t.Errorf("bounds = [%v, %v], want [45, 75]", *p.LowestPrice, *p.HighestPrice)
	}
}
