package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/entity"
)

// PromptInput is the body of a prompt creation request.
type PromptInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PromptText  string `json:"promptText"`
}

// PromptUseCase manages the prompt library.
type PromptUseCase struct {
	repo    *entity.Repository[domain.Prompt]
	changes *ChangeLog
}

func NewPromptUseCase(repo *entity.Repository[domain.Prompt], changes *ChangeLog) *PromptUseCase {
	return &PromptUseCase{repo: repo, changes: changes}
}

func (uc *PromptUseCase) List(ctx context.Context) ([]domain.Prompt, error) {
	return uc.repo.List(ctx)
}

// Create stores a new prompt under a fresh id. All three fields are required.
func (uc *PromptUseCase) Create(ctx context.Context, in PromptInput) (domain.Prompt, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.PromptText) == "" {
		return domain.Prompt{}, domain.BadRequest("Missing required fields")
	}
	p := domain.Prompt{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		PromptText:  in.PromptText,
	}
	if _, err := uc.repo.Create(ctx, p); err != nil {
		return domain.Prompt{}, err
	}
	uc.changes.Record(ctx, CollectionPrompts, domain.ActionCreate, p.ID, p)
	return p, nil
}

// Update patches an existing prompt with the given fields.
func (uc *PromptUseCase) Update(ctx context.Context, id string, fields map[string]any) (domain.Prompt, error) {
	p, err := uc.repo.Patch(ctx, id, fields)
	if errors.Is(err, domain.ErrNotFound) {
		return p, domain.NotFound("Prompt not found")
	}
	if err != nil {
		return p, err
	}
	uc.changes.Record(ctx, CollectionPrompts, domain.ActionUpdate, id, p)
	return p, nil
}

// Delete removes a prompt. Deleting an unknown id is a not-found error.
func (uc *PromptUseCase) Delete(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NotFound("Prompt not found")
	}
	uc.changes.Record(ctx, CollectionPrompts, domain.ActionDelete, id, nil)
	return nil
}
