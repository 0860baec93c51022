package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/card"
	"github.com/ariefcatur/electroshop-orders/internal/logging"
	"github.com/ariefcatur/electroshop-orders/internal/metrics"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName     = "github.com/ariefcatur/electroshop-orders/internal/fulfillment"
	useCaseFulfill = "order.fulfill"
)

// Service fulfills orders: it creates the order, validates the card and reserves stock for
// every line item inside a single transaction. The first failing phase aborts the request
// and rolls everything back.
type Service struct {
	Store     Store
	Cards     CardValidator
	Publisher Publisher        // optional
	Metrics   *metrics.Metrics // optional
	Tracer    trace.Tracer     // optional, defaults to the global provider
}

func (s *Service) Fulfill(ctx context.Context, req Request) (_ Summary, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("use_case", useCaseFulfill),
		zap.String("client_id", req.Header.ClientID),
		zap.Int("items", len(req.Items)),
	)
	ctx, span := s.tracer().Start(ctx, "Fulfill", trace.WithAttributes(
		attribute.String("order.client_id", req.Header.ClientID),
		attribute.Int("order.items", len(req.Items)),
	))
	start := time.Now()
	var sum Summary

	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("order.id", sum.OrderID))
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		lat := time.Since(start).Seconds()
		if s.Metrics != nil {
			s.Metrics.FulfillmentRequests.WithLabelValues(outcome).Inc()
			s.Metrics.FulfillmentDuration.Observe(lat)
		}
		if err != nil {
			logger.Warn("fulfillment_failed", zap.Error(err), zap.Float64("latency_seconds", lat))
			return
		}
		logger.Info("fulfillment_done",
			zap.Int("order_id", sum.OrderID),
			zap.Int("details", sum.Details),
			zap.Float64("latency_seconds", lat),
		)
	}()

	if err = checkItems(req.Items); err != nil {
		return Summary{}, err
	}

	err = s.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		// fresh per attempt so nothing leaks from a rolled back run
		sum = Summary{}

		order, pm, err := s.createOrder(ctx, tx, req.Header)
		if err != nil {
			return err
		}
		sum.OrderID = order.ID
		sum.Receipt = orders.Receipt{
			OrderID:       order.ID,
			ClientID:      order.ClientID,
			PaymentMethod: pm.Name,
			TotalValue:    order.TotalValue,
			CreatedAt:     order.CreatedAt,
		}

		if sum.Approval, err = s.validateCard(ctx, req); err != nil {
			return err
		}

		lines, err := s.addDetails(ctx, tx, order, req.Items)
		if err != nil {
			return err
		}
		sum.Details = len(lines)
		sum.Receipt.Lines = lines
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	s.publish(ctx, logger, sum.Receipt)
	return sum, nil
}

func (s *Service) createOrder(ctx context.Context, tx Tx, h orders.OrderHeader) (orders.Order, orders.PaymentMethod, error) {
	ctx, span := s.tracer().Start(ctx, "Fulfill.CreateOrder")
	defer span.End()

	client, err := tx.FindClient(ctx, h.ClientID)
	if err != nil {
		return orders.Order{}, orders.PaymentMethod{}, err
	}
	pm, err := tx.FindPaymentMethod(ctx, h.PaymentMethodID)
	if err != nil {
		return orders.Order{}, orders.PaymentMethod{}, err
	}
	order, err := tx.SaveOrder(ctx, orders.ToOrder(h, client, pm))
	if err != nil {
		return orders.Order{}, orders.PaymentMethod{}, creation("order", err)
	}
	logging.FromContext(ctx).Debug("order_created",
		zap.Int("order_id", order.ID),
		zap.Int("requested_order_id", h.RequestedID),
	)
	return order, pm, nil
}

func (s *Service) validateCard(ctx context.Context, req Request) (approval card.Approval, err error) {
	ctx, span := s.tracer().Start(ctx, "Fulfill.ValidateCard")
	defer span.End()
	return s.Cards.Validate(ctx, req.Card)
}

func (s *Service) addDetails(ctx context.Context, tx Tx, order orders.Order, items []orders.LineItem) ([]orders.ReceiptLine, error) {
	ctx, span := s.tracer().Start(ctx, "Fulfill.AddDetails")
	defer span.End()

	lines := make([]orders.ReceiptLine, 0, len(items))
	for _, it := range items {
		product, err := tx.FindProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		remaining, err := tx.Reserve(ctx, product.ID, it.Quantity)
		s.countReservation(err)
		if err != nil {
			return nil, err
		}
		if err := tx.SaveOrderDetail(ctx, orders.ToOrderDetail(it, order, product)); err != nil {
			return nil, creation("order detail", err)
		}
		logging.FromContext(ctx).Debug("stock_reserved",
			zap.Int("product_id", product.ID),
			zap.Int("quantity", it.Quantity),
			zap.Int("remaining", remaining),
		)
		lines = append(lines, orders.ReceiptLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    it.Quantity,
		})
	}
	return lines, nil
}

func (s *Service) publish(ctx context.Context, logger *zap.Logger, r orders.Receipt) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishFulfilled(ctx, r); err != nil {
		logger.Error("order_event_publish_failed", zap.Int("order_id", r.OrderID), zap.Error(err))
	}
}

func (s *Service) countReservation(err error) {
	if s.Metrics == nil {
		return
	}
	outcome := "reserved"
	switch {
	case errors.Is(err, orders.ErrInsufficientStock):
		outcome = "insufficient"
	case err != nil:
		outcome = metrics.OutcomeError
	}
	s.Metrics.StockReservations.WithLabelValues(outcome).Inc()
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer(tracerName)
}

// checkItems rejects requests that can never succeed before anything is written.
func checkItems(items []orders.LineItem) error {
	if len(items) == 0 {
		return orders.InvalidRequest("se deben incluir productos")
	}
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return orders.InvalidRequest("cantidad inválida para el producto %d", it.ProductID)
		}
		if _, dup := seen[it.ProductID]; dup {
			return orders.InvalidRequest("producto %d repetido", it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

func creation(what string, err error) error {
	if errors.Is(err, orders.ErrCreation) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return orders.CreationError(what, err)
}
