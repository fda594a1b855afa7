package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pricewatch/internal/model"
)

func (db Database) NotificationInsert(ctx context.Context, n model.Notification) error {
	_, err := db.Collection(CollectionNotifications).InsertOne(ctx, n)
	return errors.Wrapf(err, "error inserting Notification: %+v", n)
}

// NotificationsFind returns notification records for a product, most
// recent first.
func (db Database) NotificationsFind(ctx context.Context, productID primitive.ObjectID) ([]model.Notification, error) {
	var ns []model.Notification
	opts := options.Find().SetSort(bson.M{"sent_at": -1})
	cur, err := db.Collection(CollectionNotifications).Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Notifications for ProductID: %s", productID.Hex())
	}
	if err = cur.All(ctx, &ns); err != nil {
		return nil, errors.Wrapf(err, "error getting Notifications from cursor for ProductID: %s", productID.Hex())
	}
	return ns, nil
}
