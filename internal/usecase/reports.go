package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/entity"
	"github.com/V4T54L/winloss/internal/query"
)

// GenerateReportInput is the body of a report generation request.
type GenerateReportInput struct {
	InterviewIDs []string `json:"interviewIds"`
	PromptID     string   `json:"promptId"`
}

// ReportUseCase generates and serves aggregate reports.
type ReportUseCase struct {
	reports *entity.Repository[domain.AggregateReport]
	prompts *entity.Repository[domain.Prompt]
	changes *ChangeLog
	logger  *slog.Logger
	now     func() time.Time
}

func NewReportUseCase(reports *entity.Repository[domain.AggregateReport], prompts *entity.Repository[domain.Prompt], changes *ChangeLog, logger *slog.Logger) *ReportUseCase {
	return &ReportUseCase{
		reports: reports,
		prompts: prompts,
		changes: changes,
		logger:  logger.With("component", "reports"),
		now:     time.Now,
	}
}

// Generate creates a templated aggregate report from the chosen prompt. The
// interview ids are recorded as given.
func (uc *ReportUseCase) Generate(ctx context.Context, in GenerateReportInput) (domain.AggregateReport, error) {
	if len(in.InterviewIDs) == 0 || strings.TrimSpace(in.PromptID) == "" {
		return domain.AggregateReport{}, domain.BadRequest("Missing interviewIds or promptId")
	}
	prompt, err := uc.prompts.Get(ctx, in.PromptID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.AggregateReport{}, domain.NotFound("Prompt not found")
	}
	if err != nil {
		return domain.AggregateReport{}, err
	}

	n := len(in.InterviewIDs)
	report := domain.AggregateReport{
		ID:    uuid.NewString(),
		Title: fmt.Sprintf("%s from %d interviews", prompt.Name, n),
		GeneratedSummary: fmt.Sprintf("This is a simulated executive summary based on %d interviews using the \"%s\" prompt. "+
			"Key themes identified include strong product performance, competitive pricing pressures, and opportunities for market expansion.",
			n, prompt.Name),
		SourceInterviewIDs: append([]string(nil), in.InterviewIDs...),
		PromptID:           prompt.ID,
		DateGenerated:      domain.FormatDate(uc.now()),
		ReportType:         domain.ReportTypeAI,
	}
	if _, err := uc.reports.Create(ctx, report); err != nil {
		return domain.AggregateReport{}, err
	}
	uc.changes.Record(ctx, CollectionReports, domain.ActionCreate, report.ID, report)
	return report, nil
}

// List returns the aggregate reports generated within [from, to]. Invalid
// bounds are logged and ignored.
func (uc *ReportUseCase) List(ctx context.Context, from, to string) ([]domain.AggregateReport, error) {
	items, err := uc.reports.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered, err := query.FilterAggregateReports(items, from, to)
	if err != nil {
		uc.logger.Warn("ignoring invalid date filter", "from", from, "to", to, "error", err)
	}
	return filtered, nil
}

func (uc *ReportUseCase) Get(ctx context.Context, id string) (domain.AggregateReport, error) {
	r, err := uc.reports.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return r, domain.NotFound("Aggregate report not found")
	}
	return r, err
}
