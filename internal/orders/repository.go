package orders

import "context"

// Repository is the write side used inside a fulfillment transaction.
// Orders and details are append-only.
type Repository interface {
	FindClient(ctx context.Context, id string) (Client, error)
	FindPaymentMethod(ctx context.Context, id int) (PaymentMethod, error)
	FindProduct(ctx context.Context, id int) (Product, error)
	SaveOrder(ctx context.Context, o Order) (Order, error)
	SaveOrderDetail(ctx context.Context, d OrderDetail) error
}

type ReadModel interface {
	LoadReceipt(ctx context.Context, orderID int) (Receipt, error)
	ListProducts(ctx context.Context) ([]ProductStock, error)
}
