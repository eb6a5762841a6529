package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/entity"
	"github.com/V4T54L/winloss/internal/query"
)

// DashboardUseCase serves the dashboard widgets and the catalog lookups.
type DashboardUseCase struct {
	interviews *entity.Repository[domain.Interview]
	programs   *entity.Repository[domain.Program]
	logger     *slog.Logger
	now        func() time.Time
}

func NewDashboardUseCase(interviews *entity.Repository[domain.Interview], programs *entity.Repository[domain.Program], logger *slog.Logger) *DashboardUseCase {
	return &DashboardUseCase{
		interviews: interviews,
		programs:   programs,
		logger:     logger.With("component", "dashboard"),
		now:        time.Now,
	}
}

// Stats summarizes the last six months. Request filters do not apply.
func (uc *DashboardUseCase) Stats(ctx context.Context) (domain.DashboardStats, error) {
	items, err := uc.interviews.List(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return query.DashboardStats(items, uc.now()), nil
}

func (uc *DashboardUseCase) Quotes(ctx context.Context) ([]domain.DashboardQuote, error) {
	items, err := uc.interviews.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.DashboardQuotes(items), nil
}

// Analytics returns the canned analytics dataset. Filters are accepted for
// API compatibility and only logged.
func (uc *DashboardUseCase) Analytics(ctx context.Context, c query.Criteria) domain.AnalyticsData {
	uc.logger.Info("analytics requested", "filters", c.Values().Encode())
	return query.Analytics()
}

func (uc *DashboardUseCase) Competitors(ctx context.Context) ([]string, error) {
	items, err := uc.interviews.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.Competitors(items), nil
}

func (uc *DashboardUseCase) Programs(ctx context.Context) ([]domain.Program, error) {
	return uc.programs.List(ctx)
}
