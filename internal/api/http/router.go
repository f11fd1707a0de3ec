package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	healthhttp "github.com/PhiQuangHuy/order-service/platform/health/http"
)

// NewRouter assembles the service routes. readiness gates /health; metrics may
// be nil, in which case /metrics is not mounted.
func NewRouter(
	orders *OrderHandler,
	products *ProductHandler,
	readiness func() bool,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthhttp.Handler(readiness))
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.Create)
		r.Get("/", orders.List)
		r.Get("/{id}", orders.Get)
		r.Put("/{id}", orders.Update)
		r.Put("/{id}/status", orders.UpdateStatus)
		r.Delete("/{id}", orders.Delete)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", products.Create)
		r.Get("/", products.List)
		r.Get("/{id}", products.Get)
		r.Put("/{id}", products.Update)
		r.Delete("/{id}", products.Delete)
	})

	return r
}
