package fulfillment

import (
	"context"

	"github.com/ariefcatur/electroshop-orders/internal/card"
	"github.com/ariefcatur/electroshop-orders/internal/inventory"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
)

// Tx is the unit of work of one fulfillment request.
type Tx interface {
	orders.Repository
	inventory.Ledger
}

// Store runs fn inside one all-or-nothing transaction. When fn returns an error every
// effect of fn is rolled back: the order, its details and the stock decrements.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type CardValidator interface {
	Validate(ctx context.Context, c card.Card) (card.Approval, error)
}

// Publisher announces committed orders. Failures never undo a committed order.
type Publisher interface {
	PublishFulfilled(ctx context.Context, r orders.Receipt) error
}
