package postgres

import (
	"context"
	"errors"

	"github.com/ariefcatur/electroshop-orders/internal/fulfillment"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs fulfillment transactions against Postgres and serves the read model.
type Store struct{ DB *pgxpool.Pool }

// WithinTx: one pgx transaction per fulfillment request; any error -> rollback via defer.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx fulfillment.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) LoadReceipt(ctx context.Context, orderID int) (orders.Receipt, error) {
	var r orders.Receipt
	err := s.DB.QueryRow(ctx, `
		SELECT o.id, o.client_id, pm.name, o.total_value, o.created_at
		FROM orders o JOIN payment_methods pm ON pm.id = o.payment_method_id
		WHERE o.id = $1`, orderID,
	).Scan(&r.OrderID, &r.ClientID, &r.PaymentMethod, &r.TotalValue, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Receipt{}, orders.NotFound("pedido", orderID)
	}
	if err != nil {
		return orders.Receipt{}, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT d.product_id, p.name, p.price, d.quantity
		FROM order_details d JOIN products p ON p.id = d.product_id
		WHERE d.order_id = $1
		ORDER BY d.product_id`, orderID)
	if err != nil {
		return orders.Receipt{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var l orders.ReceiptLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			return orders.Receipt{}, err
		}
		r.Lines = append(r.Lines, l)
	}
	return r, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context) ([]orders.ProductStock, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT p.id, p.name, p.price, p.category_id, c.name, COALESCE(s.quantity, 0)
		FROM products p
		JOIN product_categories c ON c.id = p.category_id
		LEFT JOIN stock s ON s.product_id = p.id
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.ProductStock
	for rows.Next() {
		var p orders.ProductStock
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.CategoryName, &p.Quantity); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
