package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/V4T54L/winloss/internal/domain"
)

func TestUserUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Create generates id and avatar", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewUserUseCase(env.repos.Users, env.changes)

		u, err := uc.Create(ctx, UserInput{Name: "Eve Adams", Email: "eve@example.com", Role: domain.RoleViewer})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.ID == "" || !strings.HasPrefix(u.AvatarURL, "https://i.pravatar.cc/40?u=") {
			t.Errorf("unexpected user: %+v", u)
		}

		// The email must not reach the change feed in clear text.
		if len(env.feed.Published) != 1 {
			t.Fatalf("expected 1 change event, got %d", len(env.feed.Published))
		}
		event := env.feed.Published[0]
		var payload map[string]any
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if payload["email"] != "[REDACTED]" || !event.PIIRedacted {
			t.Errorf("expected redacted email, got %v", payload["email"])
		}
	})

	t.Run("Create rejects missing fields and bad roles", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewUserUseCase(env.repos.Users, env.changes)

		if _, err := uc.Create(ctx, UserInput{Name: "x", Email: "y"}); domain.Message(err, "") != "Missing required fields" {
			t.Errorf("expected missing fields, got %v", err)
		}
		if _, err := uc.Create(ctx, UserInput{Name: "x", Email: "y", Role: "Owner"}); !errors.Is(err, domain.ErrBadRequest) {
			t.Errorf("expected bad request for invalid role, got %v", err)
		}
	})

	t.Run("Update validates role", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewUserUseCase(env.repos.Users, env.changes)

		if _, err := uc.Update(ctx, "user-1", map[string]any{"role": "Root"}); !errors.Is(err, domain.ErrBadRequest) {
			t.Errorf("expected bad request, got %v", err)
		}
		u, err := uc.Update(ctx, "user-1", map[string]any{"role": "Viewer"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.Role != domain.RoleViewer || u.Name != "Alice Johnson" {
			t.Errorf("unexpected user after update: %+v", u)
		}
	})

	t.Run("Missing user", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewUserUseCase(env.repos.Users, env.changes)

		if _, err := uc.Get(ctx, "ghost"); domain.Message(err, "") != "User not found" {
			t.Errorf("expected User not found, got %v", err)
		}
		if err := uc.Delete(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
		if _, err := uc.Update(ctx, "ghost", map[string]any{"name": "x"}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
		if _, err := uc.Update(ctx, "ghost", map[string]any{"role": "Root"}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found before role validation, got %v", err)
		}
	})
}
