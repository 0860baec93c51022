package receipts

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/electroshop-orders/internal/kafka"
	"github.com/ariefcatur/electroshop-orders/internal/logging"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/ariefcatur/electroshop-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Projector writes receipts from order.fulfilled events into the cache.
type Projector struct {
	Cache       *Cache
	Redis       redis.Cmdable
	ServiceName string
}

// HandleOrderFulfilled is installed as the consumer handler.
func (p *Projector) HandleOrderFulfilled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderFulfilled {
		return nil
	}

	logger := logging.FromContext(ctx).With(
		zap.String("event_id", env.EventID),
		zap.String("correlation_id", env.CorrelationID),
	)

	dkey := fmt.Sprintf(redisx.KeyDedup, p.ServiceName, env.EventID)
	first, err := redisx.Claim(ctx, p.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !first {
		logger.Debug("event_duplicate_skipped")
		return nil
	}

	payload, err := kafkax.UnwrapPayload[orders.OrderFulfilledPayload](env.Payload)
	if err != nil {
		// let a redelivery try again
		_ = p.Redis.Del(ctx, dkey).Err()
		return err
	}
	if err := p.Cache.Put(ctx, payload.Receipt); err != nil {
		_ = p.Redis.Del(ctx, dkey).Err()
		return err
	}
	logger.Info("receipt_projected", zap.Int("order_id", payload.Receipt.OrderID))
	return nil
}
