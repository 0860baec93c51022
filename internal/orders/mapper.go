package orders

// OrderHeader is the order part of an inbound fulfillment request.
type OrderHeader struct {
	// RequestedID is informational only; the store assigns the order id.
	RequestedID     int
	ClientID        string
	PaymentMethodID int
	TotalValue      int64
}

// LineItem is one (product, quantity) pair of a fulfillment request.
type LineItem struct {
	OrderID   int
	ProductID int
	Quantity  int
}

// ToOrder builds a persistable order from a header and its resolved references.
// The id is left zero for the store to generate.
func ToOrder(h OrderHeader, client Client, pm PaymentMethod) Order {
	return Order{
		ClientID:        client.ID,
		PaymentMethodID: pm.ID,
		TotalValue:      h.TotalValue,
	}
}

// ToOrderDetail builds the detail row for a line item of an already persisted order.
func ToOrderDetail(li LineItem, order Order, product Product) OrderDetail {
	return OrderDetail{
		Key:      OrderDetailKey{OrderID: order.ID, ProductID: product.ID},
		Quantity: li.Quantity,
	}
}
