package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pricewatch/internal/model"
)

// ProductInsert adds a product, keyed by its normalized URL. If a product
// with the same URL already exists its ID is returned instead; a
// soft-deleted one is reactivated.
func (db Database) ProductInsert(ctx context.Context, p model.Product) (id string, err error) {
	var existing model.Product
	err = db.Collection(CollectionProducts).FindOne(ctx, bson.M{"url": p.URL}).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			p.Active = true
			p.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
			p.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
			r, err := db.Collection(CollectionProducts).InsertOne(ctx, p)
			if err != nil {
				return "", errors.Wrapf(err, "error inserting Product: %+v", p)
			}
			return r.InsertedID.(primitive.ObjectID).Hex(), nil
		}
		return "", errors.Wrapf(err, "error trying to find existing Product with URL: %s", p.URL)
	}
	if !existing.Active {
		_, err = db.Collection(CollectionProducts).UpdateOne(
			ctx,
			bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{
				"active":       true,
				"target_price": p.TargetPrice,
				"updated_at":   primitive.NewDateTimeFromTime(time.Now()),
			}},
		)
		if err != nil {
			return "", errors.Wrapf(err, "error reactivating Product with URL: %s", p.URL)
		}
	}
	return existing.ID.Hex(), nil
}

// ProductFindOne returns an active product by ID. Soft-deleted products are
// not found.
func (db Database) ProductFindOne(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return p, errors.Wrapf(err, "error generating ObjectID from hex: %s", productID)
	}
	err = db.Collection(CollectionProducts).FindOne(ctx, bson.M{"_id": objID, "active": true}).Decode(&p)
	return p, errors.Wrapf(err, "error finding Product with ID: %s", productID)
}

func (db Database) ProductFindByURL(ctx context.Context, url string) (model.Product, error) {
	var p model.Product
	err := db.Collection(CollectionProducts).FindOne(ctx, bson.M{"url": url, "active": true}).Decode(&p)
	return p, errors.Wrapf(err, "error finding Product with URL: %s", url)
}

// ProductsFindActive returns all active products, newest first.
func (db Database) ProductsFindActive(ctx context.Context) ([]model.Product, error) {
	var ps []model.Product
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := db.Collection(CollectionProducts).Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find active Products")
	}
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrap(err, "error getting active Products from cursor")
	}
	return ps, nil
}

// ProductsCountActive counts products that are still tracked.
func (db Database) ProductsCountActive(ctx context.Context) (int64, error) {
	count, err := db.Collection(CollectionProducts).CountDocuments(ctx, bson.M{"active": true})
	return count, errors.Wrap(err, "error counting active Products")
}

// ProductsFindDue returns active products never checked or last checked
// before now-interval, oldest check first.
func (db Database) ProductsFindDue(ctx context.Context, interval time.Duration) ([]model.Product, error) {
	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-interval))
	var ps []model.Product
	opts := options.Find().SetSort(bson.M{"last_checked": 1})
	cur, err := db.Collection(CollectionProducts).Find(
		ctx,
		bson.M{
			"active": true,
			"$or": []bson.M{
				{"last_checked": bson.M{"$exists": false}},
				{"last_checked": nil},
				{"last_checked": bson.M{"$lt": cutoff}},
			},
		},
		opts,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find due Products, interval: %v", interval)
	}
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrapf(err, "error getting due Products from cursor, interval: %v", interval)
	}
	return ps, nil
}

// ProductPriceUpdate records a successful check: current price, monotonic
// lowest/highest and the check timestamp.
func (db Database) ProductPriceUpdate(ctx context.Context, p model.Product, price float64) error {
	p.ApplyPrice(price)
	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := db.Collection(CollectionProducts).UpdateOne(
		ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{
			"current_price": p.CurrentPrice,
			"lowest_price":  p.LowestPrice,
			"highest_price": p.HighestPrice,
			"last_checked":  now,
			"updated_at":    now,
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating price for ProductID: %s, price: %v", p.ID.Hex(), price)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "no Product matched for price update, ProductID: %s", p.ID.Hex())
	}
	return nil
}

// ProductLastCheckedUpdate stamps a failed check so the product is not
// retried on every pass.
func (db Database) ProductLastCheckedUpdate(ctx context.Context, productID primitive.ObjectID) error {
	now := primitive.NewDateTimeFromTime(time.Now())
	_, err := db.Collection(CollectionProducts).UpdateOne(
		ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"last_checked": now, "updated_at": now}},
	)
	return errors.Wrapf(err, "error updating last_checked for ProductID: %s", productID.Hex())
}

func (db Database) ProductTargetUpdate(ctx context.Context, productID string, target float64) error {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return errors.Wrapf(err, "error generating ObjectID from hex: %s", productID)
	}
	res, err := db.Collection(CollectionProducts).UpdateOne(
		ctx,
		bson.M{"_id": objID, "active": true},
		bson.M{"$set": bson.M{
			"target_price": target,
			"updated_at":   primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating target price for ProductID: %s", productID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "no Product matched for target update, ProductID: %s", productID)
	}
	return nil
}

// ProductDeactivate soft-deletes a product. History is kept.
func (db Database) ProductDeactivate(ctx context.Context, productID string) error {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return errors.Wrapf(err, "error generating ObjectID from hex: %s", productID)
	}
	res, err := db.Collection(CollectionProducts).UpdateOne(
		ctx,
		bson.M{"_id": objID, "active": true},
		bson.M{"$set": bson.M{
			"active":     false,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error deactivating ProductID: %s", productID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "no active Product matched for deactivation, ProductID: %s", productID)
	}
	return nil
}

// ProductNotifiedUpdate stamps the cooldown timestamp. Called once per
// alert regardless of how many channels fired.
func (db Database) ProductNotifiedUpdate(ctx context.Context, productID primitive.ObjectID, t time.Time) error {
	_, err := db.Collection(CollectionProducts).UpdateOne(
		ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"notified_at": primitive.NewDateTimeFromTime(t)}},
	)
	return errors.Wrapf(err, "error updating notified_at for ProductID: %s", productID.Hex())
}
