// Package cache is an optional Redis-backed cache of the latest observed
// price per product. A failed cache read or write never fails a check;
// callers degrade to the store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

type LatestPrice struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CheckedAt time.Time `json:"checked_at"`
}

func New(addr string, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to connect to Redis at %s", addr)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func key(productID string) string {
	return "price:" + productID
}

func (c *Cache) SetLatestPrice(ctx context.Context, lp LatestPrice) error {
	data, err := json.Marshal(lp)
	if err != nil {
		return errors.Wrapf(err, "error marshalling LatestPrice: %+v", lp)
	}
	if err := c.client.Set(ctx, key(lp.ProductID), data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "error caching latest price for ProductID: %s", lp.ProductID)
	}
	return nil
}

func (c *Cache) GetLatestPrice(ctx context.Context, productID string) (LatestPrice, bool, error) {
	var lp LatestPrice
	data, err := c.client.Get(ctx, key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return lp, false, nil
		}
		return lp, false, errors.Wrapf(err, "error getting cached price for ProductID: %s", productID)
	}
	if err := json.Unmarshal(data, &lp); err != nil {
		return lp, false, errors.Wrapf(err, "error unmarshalling cached price for ProductID: %s", productID)
	}
	return lp, true, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
