package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// FulfilledPublisher publishes OrderFulfilled envelopes (v1) for committed orders.
type FulfilledPublisher struct {
	Producer    *Producer
	ServiceName string
}

func (p *FulfilledPublisher) PublishFulfilled(ctx context.Context, r orders.Receipt) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderFulfilled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.ServiceName,
		CorrelationID: strconv.Itoa(r.OrderID),
		Payload:       MustMarshal(orders.OrderFulfilledPayload{Receipt: r}),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ev.TraceID = sc.TraceID().String()
	}
	return p.Producer.Publish(ctx, orders.PartitionKey(r.OrderID), MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderFulfilled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
