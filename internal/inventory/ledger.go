// Package inventory owns stock reservation: the atomic check-and-decrement of a product's
// available quantity.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ariefcatur/electroshop-orders/internal/orders"
)

var ErrInvalidQuantity = errors.New("inventory: quantity must be greater than zero")

// Ledger reserves stock. Reserve must compare and decrement the same value atomically:
// two concurrent reservations never both pass the check against a stale quantity.
// On shortage it returns *orders.InsufficientStockError and writes nothing.
type Ledger interface {
	Reserve(ctx context.Context, productID, quantity int) (remaining int, err error)
}

type row struct {
	mu    sync.Mutex
	stock orders.Stock
	name  string
}

// MemoryLedger keeps stock rows in memory, each guarded by its own mutex held across
// read, check and write. Unrelated products never contend.
type MemoryLedger struct {
	mu   sync.RWMutex
	rows map[int]*row
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{rows: make(map[int]*row)}
}

// Put registers or replaces the stock row of a product.
func (l *MemoryLedger) Put(stock orders.Stock, productName string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.rows[stock.ProductID]; ok {
		r.mu.Lock()
		r.stock, r.name = stock, productName
		r.mu.Unlock()
		return
	}
	l.rows[stock.ProductID] = &row{stock: stock, name: productName}
}

func (l *MemoryLedger) Reserve(ctx context.Context, productID, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r, err := l.row(productID)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stock.Quantity < quantity {
		return r.stock.Quantity, &orders.InsufficientStockError{
			ProductID:   productID,
			ProductName: r.name,
			Requested:   quantity,
			Available:   r.stock.Quantity,
		}
	}
	r.stock.Quantity -= quantity
	return r.stock.Quantity, nil
}

// Release gives back a previous reservation. Used to undo reservations of a rolled back
// transaction.
func (l *MemoryLedger) Release(productID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	r, err := l.row(productID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.stock.Quantity += quantity
	r.mu.Unlock()
	return nil
}

// Quantity returns the current stock of a product.
func (l *MemoryLedger) Quantity(productID int) (int, error) {
	r, err := l.row(productID)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock.Quantity, nil
}

func (l *MemoryLedger) row(productID int) (*row, error) {
	l.mu.RLock()
	r, ok := l.rows[productID]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("inventory: %w", orders.NotFound("stock", productID))
	}
	return r, nil
}
