package pii

import (
	"encoding/json"
	"log/slog"

	"github.com/V4T54L/winloss/internal/domain"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks configured fields in change event payloads before they
// leave the process.
type Redactor struct {
	fieldsToRedact map[string]struct{} // Use a map for O(1) lookups
	logger         *slog.Logger
}

// NewRedactor creates a new Redactor instance with a given set of fields to redact.
func NewRedactor(fields []string, logger *slog.Logger) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field != "" {
			fieldSet[field] = struct{}{}
		}
	}
	return &Redactor{
		fieldsToRedact: fieldSet,
		logger:         logger,
	}
}

// Redact replaces every configured field in the event payload, at any
// nesting depth, with RedactedPlaceholder. The event is modified in place.
func (r *Redactor) Redact(event *domain.ChangeEvent) error {
	if len(r.fieldsToRedact) == 0 || len(event.Payload) == 0 {
		return nil
	}

	var payload any
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		r.logger.Warn("failed to unmarshal payload for PII redaction", "error", err, "event_id", event.ID)
		return err
	}

	if !r.redactValue(payload) {
		return nil
	}

	modified, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("failed to marshal payload after PII redaction", "error", err, "event_id", event.ID)
		return err
	}
	event.Payload = modified
	event.PIIRedacted = true
	return nil
}

func (r *Redactor) redactValue(v any) bool {
	redacted := false
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if _, ok := r.fieldsToRedact[k]; ok {
				node[k] = RedactedPlaceholder
				redacted = true
				continue
			}
			if r.redactValue(child) {
				redacted = true
			}
		}
	case []any:
		for _, child := range node {
			if r.redactValue(child) {
				redacted = true
			}
		}
	}
	return redacted
}
