package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/query"
)

func TestInterviewUseCase_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uc := NewInterviewUseCase(env.repos.Interviews, env.changes, env.logger)
	uc.now = func() time.Time { return time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC) }

	t.Run("No criteria returns everything in seed order", func(t *testing.T) {
		items, err := uc.List(ctx, query.Criteria{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 15 {
			t.Fatalf("expected 15 interviews, got %d", len(items))
		}
		if items[0].ID != "interview-1" || items[len(items)-1].ID != "bs-5" {
			t.Errorf("unexpected order: first=%s last=%s", items[0].ID, items[len(items)-1].ID)
		}
	})

	t.Run("Competitor filter covers blind spots", func(t *testing.T) {
		items, err := uc.List(ctx, query.Criteria{Competitors: []string{"slack"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || items[0].ID != "bs-4" {
			t.Errorf("expected only bs-4, got %v", items)
		}
	})

	t.Run("Dashboard pipeline keeps upcoming and recent", func(t *testing.T) {
		items, err := uc.List(ctx, query.Criteria{Source: query.SourceDashboardPipeline})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := map[string]bool{
			"interview-4": true, "interview-5": true, // upcoming
			"interview-churn-2": true, "interview-renew-1": true, "survey-1": true, "survey-2": true,
			"bs-1": true, "bs-2": true, // July 2024
		}
		if len(items) != len(want) {
			t.Fatalf("expected %d interviews, got %d", len(want), len(items))
		}
		for _, iv := range items {
			if !want[iv.ID] {
				t.Errorf("unexpected interview %s", iv.ID)
			}
		}
	})
}

func TestInterviewUseCase_Get(t *testing.T) {
	env := newTestEnv(t)
	uc := NewInterviewUseCase(env.repos.Interviews, env.changes, env.logger)

	iv, err := uc.Share(context.Background(), "interview-2")
	if err != nil || iv.Company != "Acme Corp." {
		t.Fatalf("expected interview-2, got %+v, %v", iv, err)
	}

	_, err = uc.Get(context.Background(), "interview-999")
	if !errors.Is(err, domain.ErrNotFound) || domain.Message(err, "") != "Interview not found" {
		t.Errorf("expected Interview not found, got %v", err)
	}
}

func TestInterviewUseCase_Import(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uc := NewInterviewUseCase(env.repos.Interviews, env.changes, env.logger)

	batch := []domain.Interview{
		{ID: "imp-1", Title: "New win", Date: "2024-09-01T10:00:00Z", Status: domain.StatusScheduled, Outcome: domain.OutcomeNoDecision},
		{ID: "imp-2", Date: "2024-09-01", Status: domain.StatusScheduled, Report: &domain.InterviewReport{ID: "r"}},
		{ID: "imp-3", Date: "2024-09-01", Status: domain.StatusCompleted, IsBlindSpot: true},
		{ID: "interview-1", Title: "Replaced", Date: "2023-05-15T10:00:00.000Z", Status: domain.StatusCompleted, Outcome: domain.OutcomeWon},
		{ID: "imp-5", Date: "not a date", Status: domain.StatusCompleted},
	}

	result, err := uc.Import(ctx, batch)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Rejected) != 3 {
		t.Fatalf("expected 3 rejections, got %+v", result.Rejected)
	}
	if result.Rejected[0].Line != 2 || result.Rejected[0].ID != "imp-2" {
		t.Errorf("unexpected first rejection %+v", result.Rejected[0])
	}

	replaced, err := uc.Get(ctx, "interview-1")
	if err != nil || replaced.Title != "Replaced" {
		t.Errorf("expected interview-1 to be replaced, got %+v, %v", replaced, err)
	}

	actions := map[string]domain.ChangeAction{}
	for _, e := range env.feed.Published {
		actions[e.EntityID] = e.Action
	}
	if actions["imp-1"] != domain.ActionCreate || actions["interview-1"] != domain.ActionUpdate {
		t.Errorf("unexpected change actions %v", actions)
	}
}
