package router

import (
	"encoding/json"
	"net/http"

	"marketplace/internal/handler"
	"marketplace/internal/middleware"
	"marketplace/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Orders  *handler.OrderHandler
	Coupons *handler.CouponHandler
	Reports *handler.ReportHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> CorrelationID -> Logging -> CORS -> APIKeyAuth
	r.Use(
		middleware.Recovery(logger),
		middleware.CorrelationID,
		middleware.Logging(logger),
		middleware.CORS,
		middleware.APIKeyAuth(apiKey, logger),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{
			Error:         "not found",
			Code:          "NOT_FOUND",
			CorrelationID: middleware.CorrelationIDFromContext(r.Context()),
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{
			Error:         "method not allowed",
			Code:          "METHOD_NOT_ALLOWED",
			CorrelationID: middleware.CorrelationIDFromContext(r.Context()),
		})
	})

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/create", h.Orders.Create)
			r.Get("/group/{groupId}", h.Orders.GetGroup)
			r.Get("/{id}", h.Orders.GetByID)
			r.Patch("/{id}/status", h.Orders.UpdateStatus)
		})
		r.Post("/coupons/validate", h.Coupons.Validate)
		r.Get("/reports/shops/{shopId}", h.Reports.VendorReport)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
