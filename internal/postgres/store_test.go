package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/ariefcatur/electroshop-orders/internal/card"
	"github.com/ariefcatur/electroshop-orders/internal/fulfillment"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup needs a disposable database; tables are truncated.
func setup(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set, skipping integration test")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn, 4)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, Migrate(ctx, db))
	_, err = db.Exec(ctx, `TRUNCATE order_details, orders, stock, products, product_categories, payment_methods, clients RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	for _, stmt := range []string{
		`INSERT INTO clients(id, name, age, address) VALUES ('1234567', 'Juan Pérez', 30, 'Calle 123 #45-67')`,
		`INSERT INTO payment_methods(name) VALUES ('Tarjeta de crédito')`,
		`INSERT INTO product_categories(name) VALUES ('Televisores')`,
		`INSERT INTO products(name, price, category_id) VALUES ('Televisor 50 pulgadas', 1000, 1), ('Parlante', 100, 1)`,
		`INSERT INTO stock(product_id, quantity) VALUES (1, 10), (2, 5)`,
	} {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func newService(db *pgxpool.Pool) *fulfillment.Service {
	return &fulfillment.Service{
		Store: &Store{DB: db},
		Cards: card.NewValidator(card.NewSimulatedAuthorizer(0)),
	}
}

func request(items ...orders.LineItem) fulfillment.Request {
	return fulfillment.Request{
		Header: orders.OrderHeader{ClientID: "1234567", PaymentMethodID: 1, TotalValue: 4000},
		Card:   card.Card{Number: "4111 1111 1111 1111", Expiration: "12/29", CVC: "123"},
		Items:  items,
	}
}

func stockOf(t *testing.T, db *pgxpool.Pool, productID int) int {
	t.Helper()
	var q int
	require.NoError(t, db.QueryRow(context.Background(), `SELECT quantity FROM stock WHERE product_id=$1`, productID).Scan(&q))
	return q
}

func countOrders(t *testing.T, db *pgxpool.Pool) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(context.Background(), `SELECT COUNT(*) FROM orders`).Scan(&n))
	return n
}

func TestFulfillCommits(t *testing.T) {
	db := setup(t)
	ctx := context.Background()

	sum, err := newService(db).Fulfill(ctx, request(orders.LineItem{ProductID: 1, Quantity: 4}))
	require.NoError(t, err)
	assert.Contains(t, sum.String(), "1 detalles agregados con éxito")
	assert.Equal(t, 6, stockOf(t, db, 1))

	r, err := (&Store{DB: db}).LoadReceipt(ctx, sum.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "1234567", r.ClientID)
	assert.Equal(t, "Tarjeta de crédito", r.PaymentMethod)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, 4, r.Lines[0].Quantity)
}

func TestFulfillInsufficientStockRollsBack(t *testing.T) {
	db := setup(t)

	_, err := newService(db).Fulfill(context.Background(), request(
		orders.LineItem{ProductID: 1, Quantity: 4},
		orders.LineItem{ProductID: 2, Quantity: 6},
	))
	require.ErrorIs(t, err, orders.ErrInsufficientStock)
	assert.EqualError(t, err, "No hay suficientes Parlante")

	assert.Equal(t, 10, stockOf(t, db, 1))
	assert.Equal(t, 5, stockOf(t, db, 2))
	assert.Zero(t, countOrders(t, db))
}

func TestFulfillInvalidCardRollsBack(t *testing.T) {
	db := setup(t)
	req := request(orders.LineItem{ProductID: 1, Quantity: 1})
	req.Card.Number = "41111111111111"

	_, err := newService(db).Fulfill(context.Background(), req)
	require.ErrorIs(t, err, card.ErrCardNotValid)
	assert.Zero(t, countOrders(t, db))
}

func TestReserveConcurrent(t *testing.T) {
	db := setup(t)
	svc := newService(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Fulfill(context.Background(), request(orders.LineItem{ProductID: 2, Quantity: 3}))
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, orders.ErrInsufficientStock):
			short++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 2, stockOf(t, db, 2))
}

func TestListProducts(t *testing.T) {
	db := setup(t)

	ps, err := (&Store{DB: db}).ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "Televisores", ps[0].CategoryName)
	assert.Equal(t, 10, ps[0].Quantity)
}

func TestLoadReceiptNotFound(t *testing.T) {
	db := setup(t)

	_, err := (&Store{DB: db}).LoadReceipt(context.Background(), 404)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
