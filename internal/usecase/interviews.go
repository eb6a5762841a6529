package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/entity"
	"github.com/V4T54L/winloss/internal/query"
)

// ImportRejection describes one interview the importer refused.
type ImportRejection struct {
	Line   int    `json:"line"` // 1-based position in the submitted batch
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int               `json:"imported"`
	Rejected []ImportRejection `json:"rejected"`
}

// InterviewUseCase serves interview reads and the bulk importer.
type InterviewUseCase struct {
	repo    *entity.Repository[domain.Interview]
	changes *ChangeLog
	logger  *slog.Logger
	now     func() time.Time
}

func NewInterviewUseCase(repo *entity.Repository[domain.Interview], changes *ChangeLog, logger *slog.Logger) *InterviewUseCase {
	return &InterviewUseCase{repo: repo, changes: changes, logger: logger.With("component", "interviews"), now: time.Now}
}

// List returns the interviews matching c, in store order.
func (uc *InterviewUseCase) List(ctx context.Context, c query.Criteria) ([]domain.Interview, error) {
	items, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if c.Source == query.SourceDashboardPipeline {
		items = query.PipelineWindow(items, uc.now())
	}
	return query.Apply(items, c, uc.logger), nil
}

// Get returns one interview.
func (uc *InterviewUseCase) Get(ctx context.Context, id string) (domain.Interview, error) {
	iv, err := uc.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return iv, domain.NotFound("Interview not found")
	}
	return iv, err
}

// Share resolves a shared interview link. It behaves exactly like Get.
func (uc *InterviewUseCase) Share(ctx context.Context, id string) (domain.Interview, error) {
	return uc.Get(ctx, id)
}

// Import validates and stores each interview independently. Invalid records
// are reported back and do not stop the batch. An existing id is replaced.
func (uc *InterviewUseCase) Import(ctx context.Context, items []domain.Interview) (ImportResult, error) {
	result := ImportResult{Rejected: []ImportRejection{}}
	for i, iv := range items {
		if err := iv.Validate(); err != nil {
			result.Rejected = append(result.Rejected, ImportRejection{Line: i + 1, ID: iv.ID, Reason: domain.Message(err, err.Error())})
			continue
		}
		existed, err := uc.repo.Exists(ctx, iv.ID)
		if err != nil {
			return result, err
		}
		if _, err := uc.repo.Create(ctx, iv); err != nil {
			return result, err
		}
		action := domain.ActionCreate
		if existed {
			action = domain.ActionUpdate
		}
		uc.changes.Record(ctx, CollectionInterviews, action, iv.ID, iv)
		result.Imported++
	}
	uc.logger.Info("interview import finished", "imported", result.Imported, "rejected", len(result.Rejected))
	return result, nil
}
