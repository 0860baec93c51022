package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/fulfillment"
	"github.com/ariefcatur/electroshop-orders/internal/inventory"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
)

// Store is an in-memory implementation of the fulfillment store and the read model.
// Orders and details are staged per transaction and become visible on commit. Stock is
// reserved immediately through the ledger and released again on rollback.
type Store struct {
	mu         sync.RWMutex
	clients    map[string]orders.Client
	methods    map[int]orders.PaymentMethod
	categories map[int]orders.ProductCategory
	products   map[int]orders.Product
	orderRows  map[int]orders.Order
	detailRows map[int][]orders.OrderDetail

	ledger    *inventory.MemoryLedger
	lastOrder atomic.Int64
	lastStock atomic.Int64
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		clients:    make(map[string]orders.Client),
		methods:    make(map[int]orders.PaymentMethod),
		categories: make(map[int]orders.ProductCategory),
		products:   make(map[int]orders.Product),
		orderRows:  make(map[int]orders.Order),
		detailRows: make(map[int][]orders.OrderDetail),
		ledger:     inventory.NewMemoryLedger(),
		now:        time.Now,
	}
}

func (s *Store) PutClient(c orders.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

func (s *Store) PutPaymentMethod(pm orders.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[pm.ID] = pm
}

func (s *Store) PutCategory(c orders.ProductCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// PutProduct registers a product together with its stock row.
func (s *Store) PutProduct(p orders.Product, stock int) {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
	s.ledger.Put(orders.Stock{ID: int(s.lastStock.Add(1)), ProductID: p.ID, Quantity: stock}, p.Name)
}

// StockOf returns the current stock of a product.
func (s *Store) StockOf(productID int) (int, error) {
	return s.ledger.Quantity(productID)
}

// OrderCount returns the number of committed orders.
func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orderRows)
}

// DetailsOf returns the committed details of an order.
func (s *Store) DetailsOf(orderID int) []orders.OrderDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]orders.OrderDetail(nil), s.detailRows[orderID]...)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx fulfillment.Tx) error) (err error) {
	t := &tx{s: s}
	defer func() {
		if p := recover(); p != nil {
			t.rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, t); err == nil {
		err = ctx.Err()
	}
	if err != nil {
		t.rollback()
		return err
	}
	t.commit()
	return nil
}

func (s *Store) LoadReceipt(ctx context.Context, orderID int) (orders.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orderRows[orderID]
	if !ok {
		return orders.Receipt{}, orders.NotFound("pedido", orderID)
	}
	r := orders.Receipt{
		OrderID:       o.ID,
		ClientID:      o.ClientID,
		PaymentMethod: s.methods[o.PaymentMethodID].Name,
		TotalValue:    o.TotalValue,
		CreatedAt:     o.CreatedAt,
	}
	for _, d := range s.detailRows[orderID] {
		p := s.products[d.Key.ProductID]
		r.Lines = append(r.Lines, orders.ReceiptLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    d.Quantity,
		})
	}
	return r, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]orders.ProductStock, error) {
	s.mu.RLock()
	out := make([]orders.ProductStock, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, orders.ProductStock{Product: p, CategoryName: s.categories[p.CategoryID].Name})
	}
	s.mu.RUnlock()

	for i := range out {
		q, err := s.ledger.Quantity(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Quantity = q
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type reservation struct {
	productID int
	quantity  int
}

type tx struct {
	s        *Store
	orders   []orders.Order
	details  []orders.OrderDetail
	reserved []reservation
}

func (t *tx) FindClient(ctx context.Context, id string) (orders.Client, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	c, ok := t.s.clients[id]
	if !ok {
		return orders.Client{}, orders.NotFound("cliente", id)
	}
	return c, nil
}

func (t *tx) FindPaymentMethod(ctx context.Context, id int) (orders.PaymentMethod, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	pm, ok := t.s.methods[id]
	if !ok {
		return orders.PaymentMethod{}, orders.NotFound("método de pago", id)
	}
	return pm, nil
}

func (t *tx) FindProduct(ctx context.Context, id int) (orders.Product, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	p, ok := t.s.products[id]
	if !ok {
		return orders.Product{}, orders.NotFound("producto", id)
	}
	return p, nil
}

func (t *tx) SaveOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	o.ID = int(t.s.lastOrder.Add(1))
	o.CreatedAt = t.s.now().UTC()
	t.orders = append(t.orders, o)
	return o, nil
}

func (t *tx) SaveOrderDetail(ctx context.Context, d orders.OrderDetail) error {
	if !t.hasOrder(d.Key.OrderID) {
		return fmt.Errorf("order %d does not exist", d.Key.OrderID)
	}
	for _, staged := range t.details {
		if staged.Key == d.Key {
			return fmt.Errorf("order detail (%d, %d) already exists", d.Key.OrderID, d.Key.ProductID)
		}
	}
	t.details = append(t.details, d)
	return nil
}

func (t *tx) Reserve(ctx context.Context, productID, quantity int) (int, error) {
	remaining, err := t.s.ledger.Reserve(ctx, productID, quantity)
	if err != nil {
		return remaining, err
	}
	t.reserved = append(t.reserved, reservation{productID: productID, quantity: quantity})
	return remaining, nil
}

// order ids are never reused, so staged orders cannot collide with committed ones
func (t *tx) hasOrder(id int) bool {
	for _, o := range t.orders {
		if o.ID == id {
			return true
		}
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	_, ok := t.s.orderRows[id]
	return ok
}

func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, o := range t.orders {
		t.s.orderRows[o.ID] = o
	}
	for _, d := range t.details {
		t.s.detailRows[d.Key.OrderID] = append(t.s.detailRows[d.Key.OrderID], d)
	}
	t.reserved = nil
}

func (t *tx) rollback() {
	for i := len(t.reserved) - 1; i >= 0; i-- {
		r := t.reserved[i]
		_ = t.s.ledger.Release(r.productID, r.quantity)
	}
	t.reserved, t.orders, t.details = nil, nil, nil
}
