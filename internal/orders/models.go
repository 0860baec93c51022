package orders

import "time"

// Relations point one way (Order -> Client, Stock -> Product). Reverse lookups are queries.

type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Address string `json:"address"`
}

type PaymentMethod struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ProductCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	CategoryID int    `json:"category_id"`
}

// Stock is the single source of truth for a product's availability.
type Stock struct {
	ID        int `json:"id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type Order struct {
	ID              int       `json:"id"`
	ClientID        string    `json:"client_id"`
	PaymentMethodID int       `json:"payment_method_id"`
	TotalValue      int64     `json:"total_value"`
	CreatedAt       time.Time `json:"created_at"`
}

// OrderDetailKey is the composite identity of an order line: one row per (order, product).
type OrderDetailKey struct {
	OrderID   int `json:"order_id"`
	ProductID int `json:"product_id"`
}

type OrderDetail struct {
	Key      OrderDetailKey `json:"key"`
	Quantity int            `json:"quantity"`
}

// ProductStock is a product joined with its category and current stock, for listings.
type ProductStock struct {
	Product
	CategoryName string `json:"category_name"`
	Quantity     int    `json:"stock"`
}

// Receipt is the read model of a fulfilled order. Orders are immutable, so receipts are cacheable.
type Receipt struct {
	OrderID       int           `json:"order_id"`
	ClientID      string        `json:"client_id"`
	PaymentMethod string        `json:"payment_method"`
	TotalValue    int64         `json:"total_value"`
	CreatedAt     time.Time     `json:"created_at"`
	Lines         []ReceiptLine `json:"lines"`
}

type ReceiptLine struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}
