package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a tracked product. Identity is the normalized URL.
// Nullable price/timestamp fields stay unset until the first successful
// check; Active is the soft-delete flag.
type Product struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	URL          string              `bson:"url" json:"url"`
	Name         string              `bson:"name" json:"name"`
	Site         string              `bson:"site" json:"site"`
	TargetPrice  float64             `bson:"target_price" json:"target_price"`
	CurrentPrice *float64            `bson:"current_price,omitempty" json:"current_price,omitempty"`
	LowestPrice  *float64            `bson:"lowest_price,omitempty" json:"lowest_price,omitempty"`
	HighestPrice *float64            `bson:"highest_price,omitempty" json:"highest_price,omitempty"`
	LastChecked  *primitive.DateTime `bson:"last_checked,omitempty" json:"last_checked,omitempty"`
	NotifiedAt   *primitive.DateTime `bson:"notified_at,omitempty" json:"notified_at,omitempty"`
	Active       bool                `bson:"active" json:"active"`
	CreatedAt    primitive.DateTime  `bson:"created_at" json:"-"`
	UpdatedAt    primitive.DateTime  `bson:"updated_at" json:"-"`
}

// ApplyPrice folds a newly observed price into the product: current price
// always, lowest/highest monotonically.
func (p *Product) ApplyPrice(price float64) {
	p.CurrentPrice = &price
	if p.LowestPrice == nil || price < *p.LowestPrice {
		v := price
		p.LowestPrice = &v
	}
	if p.HighestPrice == nil || price > *p.HighestPrice {
		v := price
		p.HighestPrice = &v
	}
}

// ProductInfo is the bag of data a site extractor pulls from one page.
// PriceText is the raw matched text; Price is only meaningful after the
// currency parser accepted it.
type ProductInfo struct {
	Site         string
	URL          string
	Title        string
	PriceText    string
	Price        float64
	ImageURL     string
	Availability string
	Seller       string
	HasDeal      bool
	IsAuction    bool
}
