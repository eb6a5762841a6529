package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/V4T54L/winloss/internal/domain"
)

// Envelope is the body of every dashboard API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

const maxJSONBody = 1 << 20 // 1MB

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, logger *slog.Logger, data any) {
	respondWithJSON(w, logger, http.StatusOK, Envelope{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, logger *slog.Logger, data any) {
	respondWithJSON(w, logger, http.StatusCreated, Envelope{Success: true, Data: data})
}

// RespondError writes a failure envelope with a status derived from err.
// Unclassified errors are logged and surfaced generically.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := StatusFor(err)
	msg := domain.Message(err, http.StatusText(code))
	if code == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		msg = "Internal server error"
	}
	respondWithJSON(w, logger, code, Envelope{Success: false, Error: msg})
}

// RespondStatus writes a failure envelope with an explicit status.
func RespondStatus(w http.ResponseWriter, logger *slog.Logger, code int, msg string) {
	respondWithJSON(w, logger, code, Envelope{Success: false, Error: msg})
}

// StatusFor maps an error onto an HTTP status code.
func StatusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into dst. Malformed bodies are bad requests.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return domain.BadRequest("Request body is required")
		}
		return domain.BadRequest("Invalid JSON body")
	}
	return nil
}
