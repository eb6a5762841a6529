package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/V4T54L/winloss/internal/domain"
)

func TestPromptUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Create then List contains the new prompt", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewPromptUseCase(env.repos.Prompts, env.changes)

		created, err := uc.Create(ctx, PromptInput{Name: "Churn Drivers", Description: "d", PromptText: "p"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected a generated id")
		}

		items, err := uc.List(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 8 {
			t.Fatalf("expected 8 prompts, got %d", len(items))
		}
		if items[len(items)-1].ID != created.ID {
			t.Errorf("expected new prompt last, got %s", items[len(items)-1].ID)
		}
		seen := map[string]bool{}
		for _, p := range items {
			if seen[p.ID] {
				t.Errorf("duplicate prompt id %s", p.ID)
			}
			seen[p.ID] = true
		}
		if len(env.feed.Published) != 1 || env.feed.Published[0].Action != domain.ActionCreate {
			t.Errorf("expected one create change event, got %+v", env.feed.Published)
		}
	})

	t.Run("Create requires every field", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewPromptUseCase(env.repos.Prompts, env.changes)

		_, err := uc.Create(ctx, PromptInput{Name: "x", Description: "y"})
		if !errors.Is(err, domain.ErrBadRequest) {
			t.Fatalf("expected bad request, got %v", err)
		}
		if msg := domain.Message(err, ""); msg != "Missing required fields" {
			t.Errorf("unexpected message %q", msg)
		}
		if len(env.feed.Published) != 0 {
			t.Error("failed writes must not record changes")
		}
	})

	t.Run("Update patches fields", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewPromptUseCase(env.repos.Prompts, env.changes)

		updated, err := uc.Update(ctx, "prompt-1", map[string]any{"name": "Board Summary"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Name != "Board Summary" || updated.Description == "" {
			t.Errorf("unexpected prompt after update: %+v", updated)
		}
	})

	t.Run("Update missing prompt", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewPromptUseCase(env.repos.Prompts, env.changes)

		_, err := uc.Update(ctx, "nope", map[string]any{"name": "x"})
		if !errors.Is(err, domain.ErrNotFound) || domain.Message(err, "") != "Prompt not found" {
			t.Fatalf("expected Prompt not found, got %v", err)
		}
	})

	t.Run("Delete nonexistent prompt is not found", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewPromptUseCase(env.repos.Prompts, env.changes)

		err := uc.Delete(ctx, "does-not-exist")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("Delete removes the prompt", func(t *testing.T) {
		env := newTestEnv(t)
		uc := NewPromptUseCase(env.repos.Prompts, env.changes)

		if err := uc.Delete(ctx, "prompt-7"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := uc.Delete(ctx, "prompt-7"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected second delete to be not found, got %v", err)
		}
		if n := len(env.notifier.Notices); n != 1 {
			t.Errorf("expected 1 notice, got %d", n)
		}
	})
}
