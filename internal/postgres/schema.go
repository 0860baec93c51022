package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id      TEXT PRIMARY KEY,
		name    VARCHAR(50) NOT NULL,
		age     INT,
		address TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS payment_methods (
		id   SERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_categories (
		id   SERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          SERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		price       BIGINT NOT NULL CHECK (price >= 0),
		category_id INT NOT NULL REFERENCES product_categories(id)
	)`,
	`CREATE TABLE IF NOT EXISTS stock (
		id         SERIAL PRIMARY KEY,
		product_id INT NOT NULL UNIQUE REFERENCES products(id),
		quantity   INT NOT NULL CHECK (quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                SERIAL PRIMARY KEY,
		client_id         TEXT NOT NULL REFERENCES clients(id),
		payment_method_id INT NOT NULL REFERENCES payment_methods(id),
		total_value       BIGINT NOT NULL CHECK (total_value >= 0),
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_details (
		order_id   INT NOT NULL REFERENCES orders(id),
		product_id INT NOT NULL REFERENCES products(id),
		quantity   INT NOT NULL CHECK (quantity >= 1),
		PRIMARY KEY (order_id, product_id)
	)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}
