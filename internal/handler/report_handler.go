package handler

import (
	"net/http"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ReportHandler handles vendor report requests.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

// VendorReport handles GET /api/v1/reports/shops/{shopId} requests. The from
// and to query parameters are calendar dates, both inclusive.
func (h *ReportHandler) VendorReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := model.ReportQuery{
		ShopID:      chi.URLParam(r, "shopId"),
		Granularity: model.Granularity(query.Get("granularity")),
	}

	if v := query.Get("from"); v != "" {
		from, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "from must be a YYYY-MM-DD date", h.logger)
			return
		}
		q.From = &from
	}

	if v := query.Get("to"); v != "" {
		to, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "to must be a YYYY-MM-DD date", h.logger)
			return
		}
		if q.From != nil && to.Before(*q.From) {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "to must not be before from", h.logger)
			return
		}
		end := to.AddDate(0, 0, 1)
		q.To = &end
	}

	report, err := h.service.VendorReport(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
