package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Name                    = "pricewatch_db"
	CollectionProducts      = "products"
	CollectionPriceHistory  = "price_history"
	CollectionNotifications = "notifications"
)

type Database struct {
	*mongo.Database
}

var ErrNoDocumentsModified = errors.New("no documents modified")

// ConnectDB connects to MongoDB and ensures the indexes the store relies
// on: products are unique by normalized URL, history and notifications are
// read most-recent-first per product.
func ConnectDB(ctx context.Context, dbURI string) (*mongo.Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionProducts).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionPriceHistory).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "product_id", Value: 1},
				{Key: "ts", Value: -1},
			},
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionNotifications).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "product_id", Value: 1},
				{Key: "sent_at", Value: -1},
			},
		},
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}
