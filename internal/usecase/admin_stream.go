package usecase

import (
	"context"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

const (
	defaultPendingCount = 100
	defaultClaimMinIdle = time.Minute
)

// AdminStreamUseCase exposes operational controls over the change streams.
type AdminStreamUseCase struct {
	repo    domain.StreamAdminRepository
	streams map[string]struct{}
}

// NewAdminStreamUseCase creates an admin use case restricted to the named streams.
func NewAdminStreamUseCase(repo domain.StreamAdminRepository, streams ...string) *AdminStreamUseCase {
	allowed := make(map[string]struct{}, len(streams))
	for _, s := range streams {
		allowed[s] = struct{}{}
	}
	return &AdminStreamUseCase{repo: repo, streams: allowed}
}

func (uc *AdminStreamUseCase) checkStream(stream string) error {
	if _, ok := uc.streams[stream]; !ok {
		return domain.NotFound("Stream not found")
	}
	return nil
}

func (uc *AdminStreamUseCase) GetGroupInfo(ctx context.Context, stream string) ([]domain.ConsumerGroupInfo, error) {
	if err := uc.checkStream(stream); err != nil {
		return nil, err
	}
	return uc.repo.GetGroupInfo(ctx, stream)
}

func (uc *AdminStreamUseCase) GetConsumerInfo(ctx context.Context, stream, group string) ([]domain.ConsumerInfo, error) {
	if err := uc.checkStream(stream); err != nil {
		return nil, err
	}
	return uc.repo.GetConsumerInfo(ctx, stream, group)
}

func (uc *AdminStreamUseCase) GetPendingSummary(ctx context.Context, stream, group string) (*domain.PendingMessageSummary, error) {
	if err := uc.checkStream(stream); err != nil {
		return nil, err
	}
	return uc.repo.GetPendingSummary(ctx, stream, group)
}

func (uc *AdminStreamUseCase) GetPendingMessages(ctx context.Context, stream, group, consumer, startID string, count int64) ([]domain.PendingMessageDetail, error) {
	if err := uc.checkStream(stream); err != nil {
		return nil, err
	}
	if startID == "" {
		startID = "-"
	}
	if count <= 0 {
		count = defaultPendingCount
	}
	return uc.repo.GetPendingMessages(ctx, stream, group, consumer, startID, count)
}

// ClaimMessages moves idle pending messages to consumer.
func (uc *AdminStreamUseCase) ClaimMessages(ctx context.Context, stream, group, consumer string, minIdleTime time.Duration, messageIDs []string) ([]domain.ChangeEvent, error) {
	if err := uc.checkStream(stream); err != nil {
		return nil, err
	}
	if consumer == "" || len(messageIDs) == 0 {
		return nil, domain.BadRequest("consumer and messageIds are required")
	}
	if minIdleTime <= 0 {
		minIdleTime = defaultClaimMinIdle
	}
	return uc.repo.ClaimMessages(ctx, stream, group, consumer, minIdleTime, messageIDs)
}

func (uc *AdminStreamUseCase) AcknowledgeMessages(ctx context.Context, stream, group string, messageIDs ...string) (int64, error) {
	if err := uc.checkStream(stream); err != nil {
		return 0, err
	}
	if len(messageIDs) == 0 {
		return 0, domain.BadRequest("messageIds are required")
	}
	return uc.repo.AcknowledgeMessages(ctx, stream, group, messageIDs...)
}

func (uc *AdminStreamUseCase) TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error) {
	if err := uc.checkStream(stream); err != nil {
		return 0, err
	}
	if maxLen < 0 {
		return 0, domain.BadRequest("maxLen must not be negative")
	}
	return uc.repo.TrimStream(ctx, stream, maxLen)
}
