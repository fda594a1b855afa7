package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	HistoryStatusSuccess = "success"
	HistoryStatusError   = "error"
)

// PriceHistory is one check attempt for a product, success or failure.
// Records are append-only and never mutated.
type PriceHistory struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ProductID    primitive.ObjectID `bson:"product_id" json:"-"`
	Price        *float64           `bson:"pr,omitempty" json:"price,omitempty"`
	Status       string             `bson:"status" json:"status"`
	ErrorMessage string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	Availability string             `bson:"availability,omitempty" json:"availability,omitempty"`
	Seller       string             `bson:"seller,omitempty" json:"seller,omitempty"`
	Timestamp    primitive.DateTime `bson:"ts" json:"ts"`
}
