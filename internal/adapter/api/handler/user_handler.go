package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/winloss/internal/usecase"
)

// UserHandler serves workspace user management.
type UserHandler struct {
	uc     *usecase.UserUseCase
	logger *slog.Logger
}

func NewUserHandler(uc *usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{uc: uc, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.List(r.Context())
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, items)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	u, err := h.uc.Create(r.Context(), in)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondCreated(w, h.logger, u)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.uc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(w, r, &fields); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	u, err := h.uc.Update(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.uc.Delete(r.Context(), id); err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, map[string]string{"id": id})
}
