package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ariefcatur/electroshop-orders/internal/card"
	"github.com/ariefcatur/electroshop-orders/internal/logging"
	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// statusOf maps the error taxonomy to HTTP: 404, 409, 402, 400, else 500.
func statusOf(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, orders.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, card.ErrCardNotValid):
		return http.StatusPaymentRequired, "card_not_valid"
	case errors.Is(err, orders.ErrInvalidRequest), errors.As(err, &verrs):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := statusOf(err)
	resp := errorResp{Error: err.Error(), Code: kind}

	var verrs validator.ValidationErrors
	var cerr *card.ValidationError
	switch {
	case errors.As(err, &verrs):
		resp.Error = describe(verrs)
		resp.Field = verrs[0].Namespace()
	case errors.As(err, &cerr):
		resp.Field = "card." + cerr.Field
	}

	if code >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request_failed", zap.Error(err))
		resp.Error = http.StatusText(code)
	}
	writeJSON(w, code, resp)
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
