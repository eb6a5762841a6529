package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/adapter/pii"
	"github.com/V4T54L/winloss/internal/domain"
)

// ChangeNotifier receives a notice for every recorded change. The SSE broker
// implements it.
type ChangeNotifier interface {
	Notify(notice domain.ChangeNotice)
}

// ChangeLog turns successful entity writes into change events, redacts
// them, and hands them to the live notifier and the durable change feed.
type ChangeLog struct {
	feed     domain.ChangeFeed // optional
	notifier ChangeNotifier    // optional
	redactor *pii.Redactor
	metrics  *metrics.APIMetrics // optional
	logger   *slog.Logger
	now      func() time.Time
}

// NewChangeLog creates a change log. feed, notifier, and m may be nil.
func NewChangeLog(feed domain.ChangeFeed, notifier ChangeNotifier, redactor *pii.Redactor, m *metrics.APIMetrics, logger *slog.Logger) *ChangeLog {
	return &ChangeLog{
		feed:     feed,
		notifier: notifier,
		redactor: redactor,
		metrics:  m,
		logger:   logger.With("component", "change_log"),
		now:      time.Now,
	}
}

// Record builds and dispatches the event for one write. Failures are logged
// and counted but never returned: the write itself already succeeded.
func (c *ChangeLog) Record(ctx context.Context, collection string, action domain.ChangeAction, entityID string, record any) {
	if c == nil {
		return
	}
	event := domain.ChangeEvent{
		ID:         uuid.NewString(),
		Collection: collection,
		Action:     action,
		EntityID:   entityID,
		OccurredAt: c.now().UTC(),
	}
	if record != nil {
		payload, err := json.Marshal(record)
		if err != nil {
			c.logger.Warn("failed to encode change payload, recording without it", "error", err, "entity_id", entityID)
		} else {
			event.Payload = payload
		}
	}

	if c.redactor != nil {
		if err := c.redactor.Redact(&event); err != nil {
			// An unredacted payload must not leave the process.
			c.logger.Warn("failed to redact change payload, dropping payload", "error", err, "event_id", event.ID)
			event.Payload = nil
			c.count("error_redact")
		}
	}

	if c.notifier != nil {
		c.notifier.Notify(event.Notice())
	}

	if c.feed == nil {
		c.count("skipped")
		return
	}
	// The entity write already happened; a caller hanging up must not lose its event.
	if err := c.feed.Publish(context.WithoutCancel(ctx), event); err != nil {
		c.logger.Error("failed to publish change event", "error", err, "event_id", event.ID, "collection", collection, "entity_id", entityID)
		c.count("error_publish")
		return
	}
	c.count("published")
}

func (c *ChangeLog) count(status string) {
	if c.metrics != nil {
		c.metrics.ChangeEvents.WithLabelValues(status).Inc()
	}
}
