package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/card"
	"github.com/ariefcatur/electroshop-orders/internal/fulfillment"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Fulfiller interface {
	Fulfill(ctx context.Context, req fulfillment.Request) (fulfillment.Summary, error)
}

type ReceiptReader interface {
	Receipt(ctx context.Context, orderID int) (orders.Receipt, error)
}

type ProductLister interface {
	ListProducts(ctx context.Context) ([]orders.ProductStock, error)
}

type OrdersHandler struct {
	Fulfiller Fulfiller
	Receipts  ReceiptReader
	Products  ProductLister
	Timeout   time.Duration

	validate *validator.Validate
}

type paymentMethodReq struct {
	ID   int    `json:"id" validate:"required"`
	Name string `json:"name"`
}

type orderReq struct {
	OrderID       int              `json:"order_id" validate:"gte=0"`
	ClientID      string           `json:"client_id" validate:"required"`
	PaymentMethod paymentMethodReq `json:"payment_method"`
	TotalValue    int64            `json:"total_value" validate:"gte=0"`
}

type orderDetailReq struct {
	Order    int `json:"order"`
	Product  int `json:"product" validate:"required"`
	Quantity int `json:"quantity" validate:"gte=1"`
}

type CreateOrderReq struct {
	Order        orderReq         `json:"order"`
	Card         card.Card        `json:"card"`
	OrderDetails []orderDetailReq `json:"order_details" validate:"required,min=1,dive"`
}

type CreateOrderResp struct {
	OrderID  int            `json:"order_id"`
	Summary  string         `json:"summary"`
	Approval card.Approval  `json:"approval"`
	Details  int            `json:"details"`
	Receipt  orders.Receipt `json:"receipt"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	h.validate = newValidator()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/products", h.listProducts)
}

// newValidator reports fields by their json names (order_details[0].quantity).
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *OrdersHandler) timeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return 5 * time.Second
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, orders.InvalidRequest("invalid json: %v", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	sum, err := h.Fulfiller.Fulfill(ctx, toRequest(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateOrderResp{
		OrderID:  sum.OrderID,
		Summary:  sum.String(),
		Approval: sum.Approval,
		Details:  sum.Details,
		Receipt:  sum.Receipt,
	})
}

func toRequest(req CreateOrderReq) fulfillment.Request {
	items := make([]orders.LineItem, 0, len(req.OrderDetails))
	for _, d := range req.OrderDetails {
		items = append(items, orders.LineItem{OrderID: d.Order, ProductID: d.Product, Quantity: d.Quantity})
	}
	return fulfillment.Request{
		Header: orders.OrderHeader{
			RequestedID:     req.Order.OrderID,
			ClientID:        req.Order.ClientID,
			PaymentMethodID: req.Order.PaymentMethod.ID,
			TotalValue:      req.Order.TotalValue,
		},
		Card:  req.Card,
		Items: items,
	}
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || orderID <= 0 {
		writeError(w, r, orders.InvalidRequest("invalid order id %q", chi.URLParam(r, "id")))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	receipt, err := h.Receipts.Receipt(ctx, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.ListProducts(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
