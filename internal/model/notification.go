package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChannelEmail   = "email"
	ChannelDesktop = "desktop"
)

// Notification records one alert sent on one channel. The cooldown decision
// is made from Product.NotifiedAt, not from these records.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ProductID primitive.ObjectID `bson:"product_id" json:"-"`
	Channel   string             `bson:"channel" json:"channel"`
	Price     float64            `bson:"price" json:"price"`
	SentAt    primitive.DateTime `bson:"sent_at" json:"sent_at"`
	Success   bool               `bson:"success" json:"success"`
}
