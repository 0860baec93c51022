package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the chi router with request ids, zap request logging, HTTP metrics and a
// hard timeout. Handlers are registered by the caller.
func NewRouter(logger *zap.Logger, m *metrics.Metrics, timeout time.Duration) *chi.Mux {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	r := chi.NewRouter()
	r.Use(requestID, middleware.RequestID, middleware.RealIP)
	r.Use(requestLogger(logger), instrument(m), middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
