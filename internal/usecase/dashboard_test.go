package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/domain/mocks"
	"github.com/V4T54L/winloss/internal/query"
	"github.com/V4T54L/winloss/internal/seed"
)

func TestDashboardUseCase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uc := NewDashboardUseCase(env.repos.Interviews, env.repos.Programs, env.logger)

	t.Run("Programs in seed order", func(t *testing.T) {
		programs, err := uc.Programs(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(programs) != 3 || programs[0].ID != "prog-1" {
			t.Errorf("expected the 3 seeded programs starting with prog-1, got %+v", programs)
		}
	})

	t.Run("Competitors sorted and distinct", func(t *testing.T) {
		names, err := uc.Competitors(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(names) == 0 {
			t.Fatal("expected competitors from the seeded reports")
		}
		if !sort.StringsAreSorted(names) {
			t.Errorf("expected sorted names, got %v", names)
		}
		seen := map[string]bool{}
		for _, n := range names {
			if seen[n] {
				t.Errorf("duplicate competitor %q", n)
			}
			seen[n] = true
		}
	})

	t.Run("Quotes capped at three", func(t *testing.T) {
		quotes, err := uc.Quotes(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(quotes) == 0 || len(quotes) > 3 {
			t.Errorf("expected 1 to 3 quotes, got %d", len(quotes))
		}
		for _, q := range quotes {
			if !strings.Contains(q.ParticipantInfo, " at ") {
				t.Errorf("expected participant info as 'Name, Role at Company', got %q", q.ParticipantInfo)
			}
		}
	})

	t.Run("Stats window is bounded", func(t *testing.T) {
		stats, err := uc.Stats(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stats.CompletedInterviews > stats.TotalInterviews {
			t.Errorf("completed %d exceeds total %d", stats.CompletedInterviews, stats.TotalInterviews)
		}
		if len(stats.ChartData) != 6 {
			t.Errorf("expected six monthly buckets, got %d", len(stats.ChartData))
		}
		if stats.WinRate < 0 || stats.WinRate > 100 {
			t.Errorf("win rate out of range: %d", stats.WinRate)
		}
	})

	t.Run("Analytics ignores filters", func(t *testing.T) {
		all := uc.Analytics(ctx, query.Criteria{})
		filtered := uc.Analytics(ctx, query.Criteria{Outcomes: []domain.Outcome{domain.OutcomeLost}})
		if len(all.Themes) == 0 || len(all.Themes) != len(filtered.Themes) {
			t.Errorf("expected identical static analytics, got %d and %d themes", len(all.Themes), len(filtered.Themes))
		}
	})
}

func TestDashboardUseCase_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	catalog, err := seed.Load()
	if err != nil {
		t.Fatalf("failed to load seed catalog: %v", err)
	}
	repos := NewRepositories(mocks.FailingKVStore{}, catalog, seed.GeneratorOptions{}, env.logger)
	uc := NewDashboardUseCase(repos.Interviews, repos.Programs, env.logger)

	if _, err := uc.Stats(context.Background()); !errors.Is(err, mocks.ErrStoreDown) {
		t.Errorf("expected store error, got %v", err)
	}
	if _, err := uc.Programs(context.Background()); err == nil {
		t.Error("expected store error for programs")
	}
}

func TestChatUseCase_Reply(t *testing.T) {
	t.Run("echoes the question", func(t *testing.T) {
		reply, err := NewChatUseCase(0).Reply(context.Background(), "why did we lose?")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(reply, `"why did we lose?"`) {
			t.Errorf("expected the question in the reply, got %q", reply)
		}
	})

	t.Run("empty message", func(t *testing.T) {
		_, err := NewChatUseCase(0).Reply(context.Background(), "  ")
		if !errors.Is(err, domain.ErrBadRequest) {
			t.Errorf("expected bad request, got %v", err)
		}
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		_, err := NewChatUseCase(time.Minute).Reply(ctx, "hello")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if time.Since(start) > time.Second {
			t.Error("reply did not return promptly after cancellation")
		}
	})
}
