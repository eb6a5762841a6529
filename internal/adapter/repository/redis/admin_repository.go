package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/winloss/internal/domain"
)

// AdminRepository implements domain.StreamAdminRepository over the change
// stream and its DLQ. Stream names are checked by the caller.
type AdminRepository struct {
	client *redis.Client
	logger *slog.Logger
}

func NewAdminRepository(client *redis.Client, logger *slog.Logger) *AdminRepository {
	return &AdminRepository{
		client: client,
		logger: logger.With("component", "stream_admin"),
	}
}

func (r *AdminRepository) GetGroupInfo(ctx context.Context, stream string) ([]domain.ConsumerGroupInfo, error) {
	groups, err := r.client.XInfoGroups(ctx, stream).Result()
	if isMissingStream(err) {
		return []domain.ConsumerGroupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read groups of %s: %w", stream, err)
	}

	out := make([]domain.ConsumerGroupInfo, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.ConsumerGroupInfo{
			Name:            g.Name,
			Consumers:       g.Consumers,
			Pending:         g.Pending,
			Lag:             g.Lag,
			EntriesRead:     g.EntriesRead,
			LastDeliveredID: g.LastDeliveredID,
		})
	}
	return out, nil
}

func (r *AdminRepository) GetConsumerInfo(ctx context.Context, stream, group string) ([]domain.ConsumerInfo, error) {
	consumers, err := r.client.XInfoConsumers(ctx, stream, group).Result()
	if err != nil {
		return nil, groupError(err, "failed to read consumers of %s/%s", stream, group)
	}

	out := make([]domain.ConsumerInfo, 0, len(consumers))
	for _, c := range consumers {
		out = append(out, domain.ConsumerInfo{
			Name:    c.Name,
			Pending: c.Pending,
			IdleMs:  time.Duration(c.Idle).Milliseconds(),
		})
	}
	return out, nil
}

func (r *AdminRepository) GetPendingSummary(ctx context.Context, stream, group string) (*domain.PendingMessageSummary, error) {
	pending, err := r.client.XPending(ctx, stream, group).Result()
	if err != nil {
		return nil, groupError(err, "failed to read pending summary of %s/%s", stream, group)
	}
	return &domain.PendingMessageSummary{
		Total:          pending.Count,
		FirstMessageID: pending.Lower,
		LastMessageID:  pending.Higher,
		ConsumerTotals: pending.Consumers,
	}, nil
}

// GetPendingMessages lists pending entries from startID onwards, optionally
// restricted to one consumer.
func (r *AdminRepository) GetPendingMessages(ctx context.Context, stream, group, consumer, startID string, count int64) ([]domain.PendingMessageDetail, error) {
	messages, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   stream,
		Group:    group,
		Start:    startID,
		End:      "+",
		Count:    count,
		Consumer: consumer,
	}).Result()
	if err != nil {
		return nil, groupError(err, "failed to list pending entries of %s/%s", stream, group)
	}

	out := make([]domain.PendingMessageDetail, 0, len(messages))
	for _, m := range messages {
		out = append(out, domain.PendingMessageDetail{
			ID:         m.ID,
			Consumer:   m.Consumer,
			IdleMs:     m.Idle.Milliseconds(),
			RetryCount: m.RetryCount,
		})
	}
	return out, nil
}

// ClaimMessages hands idle pending entries to consumer and returns the change
// events they carry, so an operator can see what was stuck.
func (r *AdminRepository) ClaimMessages(ctx context.Context, stream, group, consumer string, minIdleTime time.Duration, messageIDs []string) ([]domain.ChangeEvent, error) {
	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdleTime,
		Messages: messageIDs,
	}).Result()
	if err != nil {
		return nil, groupError(err, "failed to claim entries on %s/%s", stream, group)
	}
	r.logger.Info("claimed change events", "stream", stream, "group", group, "consumer", consumer, "requested", len(messageIDs), "claimed", len(claimed))
	// Undecodable entries stay claimed by consumer; the operator can ack them.
	events, _ := decodeMessages(r.logger, claimed)
	return events, nil
}

func (r *AdminRepository) AcknowledgeMessages(ctx context.Context, stream, group string, messageIDs ...string) (int64, error) {
	acked, err := r.client.XAck(ctx, stream, group, messageIDs...).Result()
	if err != nil {
		return 0, groupError(err, "failed to acknowledge entries on %s/%s", stream, group)
	}
	return acked, nil
}

// TrimStream caps the stream at maxLen entries, oldest first.
func (r *AdminRepository) TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error) {
	removed, err := r.client.XTrimMaxLen(ctx, stream, maxLen).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to trim %s: %w", stream, err)
	}
	r.logger.Info("trimmed change stream", "stream", stream, "max_len", maxLen, "removed", removed)
	return removed, nil
}

// groupError maps Redis' NOGROUP reply to a not-found domain error.
func groupError(err error, format string, args ...any) error {
	if isNoGroup(err) {
		return domain.NotFound("Consumer group not found")
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func isNoGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "NOGROUP")
}

func isMissingStream(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such key")
}
