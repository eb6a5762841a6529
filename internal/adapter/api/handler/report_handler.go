package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/usecase"
)

// ReportHandler generates and serves aggregate reports.
type ReportHandler struct {
	uc      *usecase.ReportUseCase
	logger  *slog.Logger
	metrics *metrics.APIMetrics // optional
}

func NewReportHandler(uc *usecase.ReportUseCase, logger *slog.Logger, m *metrics.APIMetrics) *ReportHandler {
	return &ReportHandler{uc: uc, logger: logger, metrics: m}
}

// Generate handles POST /api/reports/generate.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in usecase.GenerateReportInput
	if err := decodeJSON(w, r, &in); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	report, err := h.uc.Generate(r.Context(), in)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ReportsGenerated.Inc()
	}
	respondCreated(w, h.logger, report)
}

// List handles GET /api/reports/aggregate?from&to.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.uc.List(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []domain.AggregateReport{}
	}
	respondOK(w, h.logger, items)
}

// Get handles GET /api/reports/aggregate/{id}.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.uc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, report)
}
