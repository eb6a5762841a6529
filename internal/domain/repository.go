package domain

import (
	"context"
	"time"
)

// KVStore is the persistence collaborator behind the entity store. Only
// single-key atomicity is assumed.
type KVStore interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// ListKeys returns every key starting with prefix, in no particular order.
	ListKeys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// ChangeFeed buffers change events durably until a consumer has sunk them.
// This abstracts away the specific implementation (e.g., Redis Streams).
type ChangeFeed interface {
	// Publish adds a single change event to the buffer.
	Publish(ctx context.Context, event ChangeEvent) error

	// ReadBatch reads a batch of change events for a specific consumer.
	ReadBatch(ctx context.Context, group, consumer string, count int) ([]ChangeEvent, error)

	// Acknowledge marks a set of events as processed.
	Acknowledge(ctx context.Context, group string, messageIDs ...string) error

	// MoveToDLQ parks events that could not be processed.
	MoveToDLQ(ctx context.Context, events []ChangeEvent) error
}

// ChangeSink is the final structured store for change events.
type ChangeSink interface {
	// WriteBatch writes events idempotently, keyed by event ID.
	WriteBatch(ctx context.Context, events []ChangeEvent) error
}

// WALRepository defines the interface for the Write-Ahead Log failover mechanism.
type WALRepository interface {
	// Write appends a change event to the local WAL file.
	Write(ctx context.Context, event ChangeEvent) error

	// Replay reads events from the WAL and sends them to a handler function.
	// The handler is responsible for re-buffering the event (e.g., to Redis).
	Replay(ctx context.Context, handler func(event ChangeEvent) error) error

	// Truncate removes WAL segments that have been successfully replayed.
	Truncate(ctx context.Context) error
}

// StreamAdminRepository exposes operational controls over the change stream.
type StreamAdminRepository interface {
	GetGroupInfo(ctx context.Context, stream string) ([]ConsumerGroupInfo, error)
	GetConsumerInfo(ctx context.Context, stream, group string) ([]ConsumerInfo, error)
	GetPendingSummary(ctx context.Context, stream, group string) (*PendingMessageSummary, error)
	GetPendingMessages(ctx context.Context, stream, group, consumer, startID string, count int64) ([]PendingMessageDetail, error)
	ClaimMessages(ctx context.Context, stream, group, consumer string, minIdleTime time.Duration, messageIDs []string) ([]ChangeEvent, error)
	AcknowledgeMessages(ctx context.Context, stream, group string, messageIDs ...string) (int64, error)
	TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error)
}
