package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/usecase"
)

// AdminHandler handles HTTP requests for change stream administration.
type AdminHandler struct {
	uc     *usecase.AdminStreamUseCase
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(uc *usecase.AdminStreamUseCase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, logger: logger}
}

// HealthCheck is a simple health check endpoint.
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetGroupInfo handles requests to get consumer group info.
// GET /admin/streams/{streamName}/groups
func (h *AdminHandler) GetGroupInfo(w http.ResponseWriter, r *http.Request) {
	groups, err := h.uc.GetGroupInfo(r.Context(), r.PathValue("streamName"))
	if err != nil {
		h.fail(w, "failed to get group info", err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, groups)
}

// GetConsumerInfo handles requests to get consumer info for a group.
// GET /admin/streams/{streamName}/groups/{groupName}/consumers
func (h *AdminHandler) GetConsumerInfo(w http.ResponseWriter, r *http.Request) {
	consumers, err := h.uc.GetConsumerInfo(r.Context(), r.PathValue("streamName"), r.PathValue("groupName"))
	if err != nil {
		h.fail(w, "failed to get consumer info", err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, consumers)
}

// GetPendingSummary handles requests to get a summary of pending change events.
// GET /admin/streams/{streamName}/groups/{groupName}/pending
func (h *AdminHandler) GetPendingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.uc.GetPendingSummary(r.Context(), r.PathValue("streamName"), r.PathValue("groupName"))
	if err != nil {
		h.fail(w, "failed to get pending summary", err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, summary)
}

// GetPendingMessages handles requests to list pending change events.
// GET /admin/streams/{streamName}/groups/{groupName}/pending/messages?consumer={consumerName}&start={startID}&count={count}
func (h *AdminHandler) GetPendingMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var count int64
	if countStr := q.Get("count"); countStr != "" {
		var err error
		count, err = strconv.ParseInt(countStr, 10, 64)
		if err != nil {
			RespondStatus(w, h.logger, http.StatusBadRequest, "invalid count parameter")
			return
		}
	}

	messages, err := h.uc.GetPendingMessages(r.Context(), r.PathValue("streamName"), r.PathValue("groupName"), q.Get("consumer"), q.Get("start"), count)
	if err != nil {
		h.fail(w, "failed to get pending messages", err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, messages)
}

// ClaimMessages handles requests to claim pending change events.
// POST /admin/streams/{streamName}/groups/{groupName}/claim
func (h *AdminHandler) ClaimMessages(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Consumer    string   `json:"consumer"`
		MinIdleTime string   `json:"min_idle_time"`
		MessageIDs  []string `json:"message_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondStatus(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	var minIdle time.Duration
	if payload.MinIdleTime != "" {
		var err error
		minIdle, err = time.ParseDuration(payload.MinIdleTime)
		if err != nil {
			RespondStatus(w, h.logger, http.StatusBadRequest, "invalid min_idle_time format")
			return
		}
	}

	claimed, err := h.uc.ClaimMessages(r.Context(), r.PathValue("streamName"), r.PathValue("groupName"), payload.Consumer, minIdle, payload.MessageIDs)
	if err != nil {
		h.fail(w, "failed to claim messages", err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, claimed)
}

// AcknowledgeMessages handles requests to acknowledge change events.
// POST /admin/streams/{streamName}/groups/{groupName}/ack
func (h *AdminHandler) AcknowledgeMessages(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MessageIDs []string `json:"message_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondStatus(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := h.uc.AcknowledgeMessages(r.Context(), r.PathValue("streamName"), r.PathValue("groupName"), payload.MessageIDs...)
	if err != nil {
		h.fail(w, "failed to acknowledge messages", err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]int64{"acknowledged": count})
}

// TrimStream handles requests to trim a change stream.
// POST /admin/streams/{streamName}/trim
func (h *AdminHandler) TrimStream(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MaxLen int64 `json:"maxlen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondStatus(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	trimmedCount, err := h.uc.TrimStream(r.Context(), r.PathValue("streamName"), payload.MaxLen)
	if err != nil {
		h.fail(w, "failed to trim stream", err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]int64{"trimmed": trimmedCount})
}

func (h *AdminHandler) fail(w http.ResponseWriter, msg string, err error) {
	if StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
	}
	code := StatusFor(err)
	RespondStatus(w, h.logger, code, domain.Message(err, http.StatusText(code)))
}
