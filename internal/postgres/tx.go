package postgres

import (
	"context"
	"errors"

	"github.com/ariefcatur/electroshop-orders/internal/inventory"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/jackc/pgx/v5"
)

type txRepo struct{ tx pgx.Tx }

func (r *txRepo) FindClient(ctx context.Context, id string) (orders.Client, error) {
	var c orders.Client
	var age *int
	var address *string
	err := r.tx.QueryRow(ctx, `SELECT id, name, age, address FROM clients WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &age, &address)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Client{}, orders.NotFound("cliente", id)
	}
	if err != nil {
		return orders.Client{}, err
	}
	if age != nil {
		c.Age = *age
	}
	if address != nil {
		c.Address = *address
	}
	return c, nil
}

func (r *txRepo) FindPaymentMethod(ctx context.Context, id int) (orders.PaymentMethod, error) {
	var pm orders.PaymentMethod
	err := r.tx.QueryRow(ctx, `SELECT id, name FROM payment_methods WHERE id=$1`, id).Scan(&pm.ID, &pm.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.PaymentMethod{}, orders.NotFound("método de pago", id)
	}
	return pm, err
}

func (r *txRepo) FindProduct(ctx context.Context, id int) (orders.Product, error) {
	var p orders.Product
	err := r.tx.QueryRow(ctx, `SELECT id, name, price, category_id FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Product{}, orders.NotFound("producto", id)
	}
	return p, err
}

func (r *txRepo) SaveOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	err := r.tx.QueryRow(ctx, `
		INSERT INTO orders(client_id, payment_method_id, total_value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		o.ClientID, o.PaymentMethodID, o.TotalValue,
	).Scan(&o.ID, &o.CreatedAt)
	return o, err
}

func (r *txRepo) SaveOrderDetail(ctx context.Context, d orders.OrderDetail) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO order_details(order_id, product_id, quantity)
		VALUES ($1, $2, $3)`,
		d.Key.OrderID, d.Key.ProductID, d.Quantity,
	)
	return err
}

// Reserve decrements with a floor in a single statement. The UPDATE takes the row lock and
// Postgres re-checks the predicate after any concurrent writer commits, so the check and
// the decrement always see the same value. The lock is held until the transaction ends.
func (r *txRepo) Reserve(ctx context.Context, productID, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	var remaining int
	err := r.tx.QueryRow(ctx, `
		UPDATE stock SET quantity = quantity - $2
		WHERE product_id = $1 AND quantity >= $2
		RETURNING quantity`, productID, quantity,
	).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// nothing updated: missing row or not enough stock
	var available int
	var name string
	err = r.tx.QueryRow(ctx, `
		SELECT s.quantity, p.name
		FROM stock s JOIN products p ON p.id = s.product_id
		WHERE s.product_id = $1`, productID,
	).Scan(&available, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, orders.NotFound("stock", productID)
	}
	if err != nil {
		return 0, err
	}
	return available, &orders.InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Requested:   quantity,
		Available:   available,
	}
}

var _ inventory.Ledger = (*txRepo)(nil)
