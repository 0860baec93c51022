package receipts

import (
	"context"
	"strconv"

	"github.com/ariefcatur/electroshop-orders/internal/logging"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Lookup is a cache-aside reader: cache, then store, then cache fill. Concurrent misses
// for the same order share one store query. Cache failures degrade to the store.
type Lookup struct {
	Cache *Cache
	Store orders.ReadModel

	group singleflight.Group
}

func (l *Lookup) Receipt(ctx context.Context, orderID int) (orders.Receipt, error) {
	logger := logging.FromContext(ctx)
	if l.Cache != nil {
		r, ok, err := l.Cache.Get(ctx, orderID)
		if err != nil {
			logger.Warn("receipt_cache_get_failed", zap.Int("order_id", orderID), zap.Error(err))
		} else if ok {
			return r, nil
		}
	}

	v, err, _ := l.group.Do(strconv.Itoa(orderID), func() (any, error) {
		r, err := l.Store.LoadReceipt(ctx, orderID)
		if err != nil {
			return orders.Receipt{}, err
		}
		if l.Cache != nil {
			if err := l.Cache.Put(ctx, r); err != nil {
				logger.Warn("receipt_cache_put_failed", zap.Int("order_id", orderID), zap.Error(err))
			}
		}
		return r, nil
	})
	if err != nil {
		return orders.Receipt{}, err
	}
	return v.(orders.Receipt), nil
}
