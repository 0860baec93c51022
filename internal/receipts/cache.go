// Package receipts serves receipts of committed orders with a Redis cache in front of the store.
package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/ariefcatur/electroshop-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCache(rdb redis.Cmdable) *Cache {
	return &Cache{rdb: rdb, ttl: redisx.TTLReceipt}
}

// Get returns the cached receipt; ok is false on a miss.
func (c *Cache) Get(ctx context.Context, orderID int) (r orders.Receipt, ok bool, err error) {
	b, err := c.rdb.Get(ctx, fmt.Sprintf(redisx.KeyOrderReceipt, orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return orders.Receipt{}, false, nil
	}
	if err != nil {
		return orders.Receipt{}, false, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return orders.Receipt{}, false, fmt.Errorf("decode receipt %d: %w", orderID, err)
	}
	return r, true, nil
}

func (c *Cache) Put(ctx context.Context, r orders.Receipt) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(redisx.KeyOrderReceipt, r.OrderID), b, c.ttl).Err()
}
