package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/winloss/internal/domain"
)

// ChangeFeed implements domain.ChangeFeed using Redis Streams.
// It also includes a Write-Ahead Log (WAL) for failover.
type ChangeFeed struct {
	client       *redis.Client
	logger       *slog.Logger
	wal          domain.WALRepository
	streamKey    string
	dlqStreamKey string
	isAvailable  atomic.Bool
	onAvailable  func(bool)
}

// NewChangeFeed creates a new Redis-backed change feed.
// The WAL is optional; pass nil if not needed (e.g., for consumers).
func NewChangeFeed(client *redis.Client, logger *slog.Logger, streamKey, group, dlqStreamKey string, wal domain.WALRepository) *ChangeFeed {
	feed := &ChangeFeed{
		client:       client,
		logger:       logger.With("component", "redis_change_feed"),
		wal:          wal,
		streamKey:    streamKey,
		dlqStreamKey: dlqStreamKey,
	}
	feed.isAvailable.Store(true) // Assume available initially

	if group != "" {
		if err := feed.setupConsumerGroup(context.Background(), group); err != nil {
			feed.isAvailable.Store(false)
			feed.logger.Error("Failed to setup consumer group, Redis may be unavailable on startup", "error", err)
		}
	}
	return feed
}

// OnAvailabilityChange registers a callback fired whenever the feed flips
// between Redis and WAL mode. Used to drive the WAL gauge.
func (f *ChangeFeed) OnAvailabilityChange(fn func(available bool)) {
	f.onAvailable = fn
}

// Available reports whether writes currently go to Redis.
func (f *ChangeFeed) Available() bool { return f.isAvailable.Load() }

func (f *ChangeFeed) setAvailable(old, new bool) bool {
	if !f.isAvailable.CompareAndSwap(old, new) {
		return false
	}
	if f.onAvailable != nil {
		f.onAvailable(new)
	}
	return true
}

// StartHealthCheck monitors Redis connectivity and replays the WAL on recovery.
// It blocks until ctx is cancelled.
func (f *ChangeFeed) StartHealthCheck(ctx context.Context, interval time.Duration) {
	if f.wal == nil {
		f.logger.Info("WAL is not configured, skipping health check/replayer")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	f.logger.Info("Starting Redis health check and WAL replayer")

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Stopping Redis health check")
			return
		case <-ticker.C:
			if err := f.client.Ping(ctx).Err(); err != nil {
				if f.setAvailable(true, false) {
					f.logger.Error("Redis connection lost", "error", err)
				}
				continue
			}
			if f.setAvailable(false, true) {
				f.logger.Info("Redis connection recovered")
				if err := f.ReplayWAL(ctx); err != nil {
					f.logger.Error("Failed to replay WAL after Redis recovery", "error", err)
					f.setAvailable(true, false)
				}
			}
		}
	}
}

// ReplayWAL re-publishes events from the WAL to Redis and truncates the WAL on success.
func (f *ChangeFeed) ReplayWAL(ctx context.Context) error {
	f.logger.Info("Attempting to replay WAL to Redis")
	replay := func(event domain.ChangeEvent) error {
		return f.publishToRedis(ctx, event)
	}

	if err := f.wal.Replay(ctx, replay); err != nil {
		return fmt.Errorf("WAL replay failed: %w", err)
	}
	if err := f.wal.Truncate(ctx); err != nil {
		return fmt.Errorf("failed to truncate WAL after successful replay: %w", err)
	}

	f.logger.Info("WAL replay to Redis completed successfully")
	return nil
}

func (f *ChangeFeed) setupConsumerGroup(ctx context.Context, group string) error {
	err := f.client.XGroupCreateMkStream(ctx, f.streamKey, group, "0").Err()
	if err != nil && !isRedisBusyGroupError(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Publish adds a change event to the stream, falling back to the WAL if Redis is unavailable.
func (f *ChangeFeed) Publish(ctx context.Context, event domain.ChangeEvent) error {
	if !f.isAvailable.Load() {
		if f.wal == nil {
			return errors.New("redis is unavailable and WAL is not configured")
		}
		f.logger.Warn("Redis is unavailable, writing to WAL", "event_id", event.ID)
		return f.wal.Write(ctx, event)
	}

	err := f.publishToRedis(ctx, event)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; that says nothing about Redis.
			return err
		}
		if isNetworkError(err) {
			if f.setAvailable(true, false) {
				f.logger.Error("Redis connection lost during write", "error", err)
			}
			if f.wal == nil {
				return fmt.Errorf("redis became unavailable and WAL is not configured: %w", err)
			}
			f.logger.Warn("Redis became unavailable, writing to WAL", "event_id", event.ID)
			return f.wal.Write(ctx, event)
		}
		return err
	}
	return nil
}

func (f *ChangeFeed) publishToRedis(ctx context.Context, event domain.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: f.streamKey,
		Values: map[string]interface{}{"payload": payload},
	}
	if err := f.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	return nil
}

// ReadBatch reads a batch of change events from the stream for a consumer group.
func (f *ChangeFeed) ReadBatch(ctx context.Context, group, consumer string, count int) ([]domain.ChangeEvent, error) {
	args := &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{f.streamKey, ">"},
		Count:    int64(count),
		Block:    2 * time.Second,
	}

	streams, err := f.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to XREADGROUP from redis: %w", err)
	}
	if len(streams) == 0 {
		return nil, nil
	}
	events, skipped := decodeMessages(f.logger, streams[0].Messages)
	if len(skipped) > 0 {
		if err := f.parkUndecodable(ctx, group, skipped); err != nil {
			f.logger.Error("Failed to park undecodable stream entries", "count", len(skipped), "error", err)
		}
	}
	return events, nil
}

// parkUndecodable copies entries that cannot be decoded to the DLQ as-is and
// acknowledges them so they do not stay pending in the group forever.
func (f *ChangeFeed) parkUndecodable(ctx context.Context, group string, messages []redis.XMessage) error {
	ids := make([]string, len(messages))
	pipe := f.client.Pipeline()
	for i, msg := range messages {
		ids[i] = msg.ID
		values := make(map[string]interface{}, len(msg.Values)+3)
		for k, v := range msg.Values {
			values[k] = v
		}
		values["original_stream"] = f.streamKey
		values["original_msg_id"] = msg.ID
		values["failed_at"] = time.Now().UTC().Format(time.RFC3339)
		pipe.XAdd(ctx, &redis.XAddArgs{Stream: f.dlqStreamKey, Values: values})
	}
	pipe.XAck(ctx, f.streamKey, group, ids...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to park undecodable entries: %w", err)
	}
	f.logger.Warn("Moved undecodable stream entries to DLQ", "count", len(messages))
	return nil
}

// Acknowledge acknowledges processed messages in the stream.
func (f *ChangeFeed) Acknowledge(ctx context.Context, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := f.client.XAck(ctx, f.streamKey, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("failed to XACK messages in redis: %w", err)
	}
	return nil
}

// MoveToDLQ moves a batch of events to the dead-letter stream.
func (f *ChangeFeed) MoveToDLQ(ctx context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	pipe := f.client.Pipeline()
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			f.logger.Error("Failed to marshal event for DLQ", "event_id", event.ID, "error", err)
			continue
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: f.dlqStreamKey,
			Values: map[string]interface{}{
				"payload":         payload,
				"original_stream": f.streamKey,
				"original_msg_id": event.StreamMessageID,
				"failed_at":       time.Now().UTC().Format(time.RFC3339),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute DLQ pipeline: %w", err)
	}
	f.logger.Warn("Moved events to DLQ", "count", len(events))
	return nil
}

// decodeMessages turns stream entries back into change events. Entries that
// are not in the expected shape are returned separately.
func decodeMessages(logger *slog.Logger, messages []redis.XMessage) (events []domain.ChangeEvent, skipped []redis.XMessage) {
	events = make([]domain.ChangeEvent, 0, len(messages))
	for _, msg := range messages {
		payload, ok := msg.Values["payload"].(string)
		if !ok {
			logger.Warn("Invalid message format in stream, skipping", "message_id", msg.ID)
			skipped = append(skipped, msg)
			continue
		}

		var event domain.ChangeEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			logger.Warn("Failed to unmarshal change event from stream, skipping", "message_id", msg.ID, "error", err)
			skipped = append(skipped, msg)
			continue
		}
		event.StreamMessageID = msg.ID
		events = append(events, event)
	}
	return events, skipped
}

func isRedisBusyGroupError(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed)
}
