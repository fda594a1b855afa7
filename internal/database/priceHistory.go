package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pricewatch/internal/model"
)

func (db Database) PriceHistoryInsert(ctx context.Context, ph model.PriceHistory) error {
	_, err := db.Collection(CollectionPriceHistory).InsertOne(ctx, ph)
	return errors.Wrapf(err, "error inserting PriceHistory: %+v", ph)
}

// PriceHistoryFind returns history records for a product, most recent
// first. A zero since means no lower bound; limit <= 0 means no limit.
func (db Database) PriceHistoryFind(
	ctx context.Context, productID primitive.ObjectID, since time.Time, limit int64,
) ([]model.PriceHistory, error) {
	filter := bson.M{"product_id": productID}
	if !since.IsZero() {
		filter["ts"] = bson.M{"$gte": primitive.NewDateTimeFromTime(since)}
	}
	opts := options.Find().SetSort(bson.M{"ts": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	var phs []model.PriceHistory
	cur, err := db.Collection(CollectionPriceHistory).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find PriceHistory for ProductID: %s", productID.Hex())
	}
	if err = cur.All(ctx, &phs); err != nil {
		return nil, errors.Wrapf(err, "error getting PriceHistory from cursor for ProductID: %s", productID.Hex())
	}
	return phs, nil
}

// PriceHistoryFindLatest returns the most recent record for a product.
func (db Database) PriceHistoryFindLatest(ctx context.Context, productID primitive.ObjectID) (model.PriceHistory, error) {
	var ph model.PriceHistory
	opts := options.FindOne().SetSort(bson.M{"ts": -1})
	err := db.Collection(CollectionPriceHistory).FindOne(ctx, bson.M{"product_id": productID}, opts).Decode(&ph)
	return ph, errors.Wrapf(err, "error finding latest PriceHistory for ProductID: %s", productID.Hex())
}
