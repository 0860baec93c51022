package fulfillment

import (
	"fmt"
	"strings"

	"github.com/ariefcatur/electroshop-orders/internal/card"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
)

type Request struct {
	Header orders.OrderHeader
	Card   card.Card
	Items  []orders.LineItem
}

// Summary is the outcome of a committed fulfillment.
type Summary struct {
	OrderID  int
	Approval card.Approval
	Details  int
	Receipt  orders.Receipt
}

// String renders the user-facing text, one block per phase.
func (s Summary) String() string {
	var b strings.Builder
	b.WriteString("Pedido creado con éxito...\n")
	b.WriteString(s.Approval.String())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d detalles agregados con éxito\n", s.Details)
	return b.String()
}
