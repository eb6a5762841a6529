package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/entity"
)

const avatarBaseURL = "https://i.pravatar.cc/40?u="

// UserInput is the body of a user creation request.
type UserInput struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// UserUseCase manages workspace users.
type UserUseCase struct {
	repo    *entity.Repository[domain.User]
	changes *ChangeLog
}

func NewUserUseCase(repo *entity.Repository[domain.User], changes *ChangeLog) *UserUseCase {
	return &UserUseCase{repo: repo, changes: changes}
}

func (uc *UserUseCase) List(ctx context.Context) ([]domain.User, error) {
	return uc.repo.List(ctx)
}

// Create stores a new user with a generated avatar.
func (uc *UserUseCase) Create(ctx context.Context, in UserInput) (domain.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Role == "" {
		return domain.User{}, domain.BadRequest("Missing required fields")
	}
	if !in.Role.Valid() {
		return domain.User{}, domain.BadRequestf("invalid role %q", in.Role)
	}
	u := domain.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		AvatarURL: avatarBaseURL + uuid.NewString(),
	}
	if _, err := uc.repo.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	uc.changes.Record(ctx, CollectionUsers, domain.ActionCreate, u.ID, u)
	return u, nil
}

func (uc *UserUseCase) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := uc.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return u, domain.NotFound("User not found")
	}
	return u, err
}

// Update patches an existing user. A role, when given, must be valid.
// A missing user is reported before any field validation.
func (uc *UserUseCase) Update(ctx context.Context, id string, fields map[string]any) (domain.User, error) {
	exists, err := uc.repo.Exists(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if !exists {
		return domain.User{}, domain.NotFound("User not found")
	}
	if raw, ok := fields["role"]; ok {
		role, isString := raw.(string)
		if !isString || !domain.UserRole(role).Valid() {
			return domain.User{}, domain.BadRequestf("invalid role %v", raw)
		}
	}
	u, err := uc.repo.Patch(ctx, id, fields)
	if errors.Is(err, domain.ErrNotFound) {
		return u, domain.NotFound("User not found")
	}
	if err != nil {
		return u, err
	}
	uc.changes.Record(ctx, CollectionUsers, domain.ActionUpdate, id, u)
	return u, nil
}

func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NotFound("User not found")
	}
	uc.changes.Record(ctx, CollectionUsers, domain.ActionDelete, id, nil)
	return nil
}
