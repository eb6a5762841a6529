package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/winloss/internal/query"
	"github.com/V4T54L/winloss/internal/usecase"
)

// DashboardHandler serves the dashboard widgets, catalog lookups and the
// assistant chat.
type DashboardHandler struct {
	uc     *usecase.DashboardUseCase
	chat   *usecase.ChatUseCase
	logger *slog.Logger
}

func NewDashboardHandler(uc *usecase.DashboardUseCase, chat *usecase.ChatUseCase, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, chat: chat, logger: logger}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.uc.Stats(r.Context())
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, stats)
}

// Quotes handles GET /api/dashboard/quotes.
func (h *DashboardHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.uc.Quotes(r.Context())
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, quotes)
}

// Analytics handles GET /api/analytics.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.logger, h.uc.Analytics(r.Context(), query.ParseCriteria(r.URL.Query())))
}

// Competitors handles GET /api/competitors.
func (h *DashboardHandler) Competitors(w http.ResponseWriter, r *http.Request) {
	names, err := h.uc.Competitors(r.Context())
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondOK(w, h.logger, names)
}

// Programs handles GET /api/programs.
func (h *DashboardHandler) Programs(w http.ResponseWriter, r *http.Request) {
	programs, err := h.uc.Programs(r.Context())
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, programs)
}

// Chat handles POST /api/chat.
func (h *DashboardHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	reply, err := h.chat.Reply(r.Context(), in.Message)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; nobody is left to read a response.
			return
		}
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, map[string]string{"reply": reply})
}
