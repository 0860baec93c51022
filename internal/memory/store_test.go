package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/electroshop-orders/internal/fulfillment"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	Seed(s)
	return s
}

func TestWithinTxCommits(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	var orderID int
	err := s.WithinTx(ctx, func(ctx context.Context, tx fulfillment.Tx) error {
		o, err := tx.SaveOrder(ctx, orders.Order{ClientID: "1234567", PaymentMethodID: 1, TotalValue: 4000})
		if err != nil {
			return err
		}
		orderID = o.ID
		if _, err := tx.Reserve(ctx, 1, 4); err != nil {
			return err
		}
		return tx.SaveOrderDetail(ctx, orders.OrderDetail{Key: orders.OrderDetailKey{OrderID: o.ID, ProductID: 1}, Quantity: 4})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, s.OrderCount())
	assert.Len(t, s.DetailsOf(orderID), 1)
	q, _ := s.StockOf(1)
	assert.Equal(t, 6, q)

	r, err := s.LoadReceipt(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "Tarjeta de crédito", r.PaymentMethod)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "Televisor 50 pulgadas", r.Lines[0].ProductName)
	assert.Equal(t, int64(1000), r.Lines[0].UnitPrice)
}

func TestWithinTxRollsBackEverything(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx fulfillment.Tx) error {
		o, _ := tx.SaveOrder(ctx, orders.Order{ClientID: "1234567", PaymentMethodID: 1})
		if _, err := tx.Reserve(ctx, 1, 4); err != nil {
			return err
		}
		if _, err := tx.Reserve(ctx, 2, 5); err != nil {
			return err
		}
		_ = tx.SaveOrderDetail(ctx, orders.OrderDetail{Key: orders.OrderDetailKey{OrderID: o.ID, ProductID: 1}, Quantity: 4})
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Zero(t, s.OrderCount())
	q1, _ := s.StockOf(1)
	q2, _ := s.StockOf(2)
	assert.Equal(t, 10, q1)
	assert.Equal(t, 5, q2)
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	s := seeded(t)

	assert.Panics(t, func() {
		_ = s.WithinTx(context.Background(), func(ctx context.Context, tx fulfillment.Tx) error {
			_, _ = tx.Reserve(ctx, 1, 10)
			panic("oops")
		})
	})
	q, _ := s.StockOf(1)
	assert.Equal(t, 10, q)
}

func TestWithinTxRollsBackOnCancelledContext(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(ctx context.Context, tx fulfillment.Tx) error {
		_, err := tx.Reserve(ctx, 1, 2)
		cancel()
		return err
	})
	require.ErrorIs(t, err, context.Canceled)
	q, _ := s.StockOf(1)
	assert.Equal(t, 10, q)
}

func TestSaveOrderDetailRejectsDuplicateKey(t *testing.T) {
	s := seeded(t)

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx fulfillment.Tx) error {
		o, _ := tx.SaveOrder(ctx, orders.Order{ClientID: "1234567", PaymentMethodID: 1})
		d := orders.OrderDetail{Key: orders.OrderDetailKey{OrderID: o.ID, ProductID: 1}, Quantity: 1}
		if err := tx.SaveOrderDetail(ctx, d); err != nil {
			return err
		}
		return tx.SaveOrderDetail(ctx, d)
	})
	assert.ErrorContains(t, err, "already exists")
}

func TestSaveOrderDetailRequiresOrder(t *testing.T) {
	s := seeded(t)

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx fulfillment.Tx) error {
		return tx.SaveOrderDetail(ctx, orders.OrderDetail{Key: orders.OrderDetailKey{OrderID: 404, ProductID: 1}, Quantity: 1})
	})
	assert.ErrorContains(t, err, "does not exist")
}

func TestFindersReportNotFound(t *testing.T) {
	s := seeded(t)

	_ = s.WithinTx(context.Background(), func(ctx context.Context, tx fulfillment.Tx) error {
		_, err := tx.FindClient(ctx, "nadie")
		assert.ErrorIs(t, err, orders.ErrNotFound)
		_, err = tx.FindPaymentMethod(ctx, 9)
		assert.ErrorIs(t, err, orders.ErrNotFound)
		_, err = tx.FindProduct(ctx, 9)
		assert.ErrorIs(t, err, orders.ErrNotFound)
		return nil
	})

	_, err := s.LoadReceipt(context.Background(), 1)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestListProducts(t *testing.T) {
	s := seeded(t)

	ps, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, 1, ps[0].ID)
	assert.Equal(t, "Televisores", ps[0].CategoryName)
	assert.Equal(t, 10, ps[0].Quantity)
	assert.Equal(t, 5, ps[1].Quantity)
}
