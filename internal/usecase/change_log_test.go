package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/V4T54L/winloss/internal/adapter/pii"
	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/domain/mocks"
)

func TestChangeLog_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes redacted event and notifies", func(t *testing.T) {
		env := newTestEnv(t)
		user := domain.User{ID: "u-9", Name: "Eve", Email: "eve@example.com", Role: domain.RoleViewer}

		env.changes.Record(ctx, CollectionUsers, domain.ActionCreate, user.ID, user)

		if len(env.feed.Published) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(env.feed.Published))
		}
		event := env.feed.Published[0]
		if event.ID == "" || event.OccurredAt.IsZero() {
			t.Errorf("expected id and timestamp, got %+v", event)
		}
		if !event.PIIRedacted {
			t.Error("expected the event to be marked redacted")
		}
		var payload map[string]any
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload["email"] != pii.RedactedPlaceholder {
			t.Errorf("expected email redacted, got %v", payload["email"])
		}
		if payload["name"] != "Eve" {
			t.Errorf("expected name kept, got %v", payload["name"])
		}

		want := domain.ChangeNotice{Collection: CollectionUsers, Action: domain.ActionCreate, EntityID: "u-9"}
		if len(env.notifier.Notices) != 1 || env.notifier.Notices[0] != want {
			t.Errorf("expected notice %+v, got %+v", want, env.notifier.Notices)
		}
	})

	t.Run("delete events carry no payload", func(t *testing.T) {
		env := newTestEnv(t)
		env.changes.Record(ctx, CollectionPrompts, domain.ActionDelete, "p-1", nil)

		if got := env.feed.Published[0].Payload; len(got) != 0 {
			t.Errorf("expected empty payload, got %s", got)
		}
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		env := newTestEnv(t)
		env.feed.PublishErr = errors.New("redis down")

		env.changes.Record(ctx, CollectionPrompts, domain.ActionUpdate, "p-1", domain.Prompt{ID: "p-1"})

		if len(env.notifier.Notices) != 1 {
			t.Error("live subscribers are notified even when the feed is down")
		}
	})

	t.Run("publishes after the caller cancels", func(t *testing.T) {
		env := newTestEnv(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		env.changes.Record(cancelled, CollectionPrompts, domain.ActionUpdate, "p-1", domain.Prompt{ID: "p-1"})

		if len(env.feed.Published) != 1 {
			t.Fatalf("expected the event to be published, got %d", len(env.feed.Published))
		}
		if env.feed.PublishCtxErr != nil {
			t.Errorf("expected publish to run on a live context, got %v", env.feed.PublishCtxErr)
		}
	})

	t.Run("nil change log is a no-op", func(t *testing.T) {
		var c *ChangeLog
		c.Record(ctx, CollectionPrompts, domain.ActionCreate, "p-1", nil)
	})

	t.Run("works without feed or notifier", func(t *testing.T) {
		env := newTestEnv(t)
		c := NewChangeLog(nil, nil, nil, nil, env.logger)
		c.Record(ctx, CollectionPrompts, domain.ActionCreate, "p-1", domain.Prompt{ID: "p-1"})
	})
}

func TestAdminStreamUseCase(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MockStreamAdminRepository{}
	uc := NewAdminStreamUseCase(repo, "winloss:changes")

	if _, err := uc.GetGroupInfo(ctx, "other-stream"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for unknown stream, got %v", err)
	}

	if _, err := uc.GetPendingMessages(ctx, "winloss:changes", "g", "", "", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.LastStartID != "-" || repo.LastCount != defaultPendingCount {
		t.Errorf("expected defaults, got start=%q count=%d", repo.LastStartID, repo.LastCount)
	}

	if _, err := uc.ClaimMessages(ctx, "winloss:changes", "g", "", 0, []string{"1-0"}); !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected bad request without consumer, got %v", err)
	}
	if _, err := uc.ClaimMessages(ctx, "winloss:changes", "g", "c1", 0, []string{"1-0"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.LastMinIdle != defaultClaimMinIdle {
		t.Errorf("expected default min idle, got %s", repo.LastMinIdle)
	}

	if _, err := uc.AcknowledgeMessages(ctx, "winloss:changes", "g"); !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected bad request without ids, got %v", err)
	}
	n, err := uc.AcknowledgeMessages(ctx, "winloss:changes", "g", "1-0", "2-0")
	if err != nil || n != 2 {
		t.Errorf("expected (2, nil), got (%d, %v)", n, err)
	}

	if _, err := uc.TrimStream(ctx, "winloss:changes", -1); !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected bad request for negative maxLen, got %v", err)
	}
}
