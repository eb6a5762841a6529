package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/domain"
)

// ProcessChangesUseCase drains change events from the feed into the audit
// sink. Batches that keep failing are parked in the DLQ.
type ProcessChangesUseCase struct {
	feed         domain.ChangeFeed
	sink         domain.ChangeSink
	metrics      *metrics.ConsumerMetrics // optional
	logger       *slog.Logger
	group        string
	consumer     string
	batchSize    int
	maxRetries   int
	retryBackoff time.Duration
}

// ProcessOptions tunes batch reads and sink retries.
type ProcessOptions struct {
	Group        string
	Consumer     string
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// NewProcessChangesUseCase creates the consumer use case. m may be nil.
func NewProcessChangesUseCase(feed domain.ChangeFeed, sink domain.ChangeSink, m *metrics.ConsumerMetrics, logger *slog.Logger, opts ProcessOptions) *ProcessChangesUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	return &ProcessChangesUseCase{
		feed:         feed,
		sink:         sink,
		metrics:      m,
		logger:       logger.With("component", "process_changes"),
		group:        opts.Group,
		consumer:     opts.Consumer,
		batchSize:    opts.BatchSize,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
	}
}

// ProcessBatch reads one batch, writes it to the sink with retries, and
// acknowledges it. A batch that exhausts its retries goes to the DLQ and is
// still acknowledged; the sink error is returned. It returns the number of
// events written to the sink.
func (uc *ProcessChangesUseCase) ProcessBatch(ctx context.Context) (int, error) {
	events, err := uc.feed.ReadBatch(ctx, uc.group, uc.consumer, uc.batchSize)
	if err != nil {
		uc.logger.Error("failed to read change batch from feed", "error", err)
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}
	uc.logger.Debug("read batch of change events", "count", len(events))

	start := time.Now()
	sinkErr := uc.writeWithRetry(ctx, events)
	if uc.metrics != nil {
		uc.metrics.BatchLatency.Observe(time.Since(start).Seconds())
	}
	if sinkErr != nil {
		if ctx.Err() != nil {
			// Shutting down: leave the batch pending for the next run.
			return 0, sinkErr
		}
		uc.logger.Error("failed to write change batch to sink after retries, moving to DLQ", "error", sinkErr, "count", len(events))
		if err := uc.feed.MoveToDLQ(ctx, events); err != nil {
			uc.logger.Error("failed to move change batch to DLQ", "error", err)
			return 0, err
		}
		uc.count("dlq", len(events))
	}

	messageIDs := make([]string, len(events))
	for i, event := range events {
		messageIDs[i] = event.StreamMessageID
	}
	if err := uc.feed.Acknowledge(ctx, uc.group, messageIDs...); err != nil {
		// Redelivered events are harmless: the sink upsert is keyed by event id.
		uc.logger.Error("failed to acknowledge change events", "error", err)
		return 0, err
	}

	if sinkErr != nil {
		return 0, sinkErr
	}
	uc.count("sunk", len(events))
	uc.logger.Info("processed change batch", "count", len(events))
	return len(events), nil
}

// Run processes batches until ctx is cancelled.
func (uc *ProcessChangesUseCase) Run(ctx context.Context) {
	uc.logger.Info("change consumer started", "group", uc.group, "consumer", uc.consumer)
	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("change consumer stopped")
			return
		default:
		}
		if _, err := uc.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
			// Back off so a dead dependency does not turn into a hot loop.
			select {
			case <-time.After(uc.retryBackoff):
			case <-ctx.Done():
			}
		}
	}
}

func (uc *ProcessChangesUseCase) writeWithRetry(ctx context.Context, events []domain.ChangeEvent) error {
	var lastErr error
	for i := 0; i < uc.maxRetries; i++ {
		err := uc.sink.WriteBatch(ctx, events)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == uc.maxRetries-1 {
			break
		}
		if uc.metrics != nil {
			uc.metrics.SinkRetries.Inc()
		}
		uc.logger.Warn("failed to write batch to sink, retrying", "attempt", i+1, "error", err)
		select {
		case <-time.After(uc.retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (uc *ProcessChangesUseCase) count(status string, n int) {
	if uc.metrics != nil {
		uc.metrics.EventsTotal.WithLabelValues(status).Add(float64(n))
	}
}
