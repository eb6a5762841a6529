package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/winloss/internal/usecase"
)

// PromptHandler serves the prompt library.
type PromptHandler struct {
	uc     *usecase.PromptUseCase
	logger *slog.Logger
}

func NewPromptHandler(uc *usecase.PromptUseCase, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{uc: uc, logger: logger}
}

// List handles GET /api/prompts.
func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.List(r.Context())
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, items)
}

// Create handles POST /api/prompts.
func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.PromptInput
	if err := decodeJSON(w, r, &in); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	p, err := h.uc.Create(r.Context(), in)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondCreated(w, h.logger, p)
}

// Update handles PUT /api/prompts/{id}.
func (h *PromptHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(w, r, &fields); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	p, err := h.uc.Update(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, p)
}

// Delete handles DELETE /api/prompts/{id}.
func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.uc.Delete(r.Context(), id); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, map[string]string{"id": id})
}
