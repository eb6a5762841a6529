package usecase

import (
	"context"
	"log/slog"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/entity"
	"github.com/V4T54L/winloss/internal/seed"
)

// Collection names double as the key namespaces in the KV store.
const (
	CollectionInterviews = "interviews"
	CollectionPrompts    = "prompts"
	CollectionReports    = "aggregateReports"
	CollectionPrograms   = "programs"
	CollectionUsers      = "users"
)

// Repositories groups the entity store of every collection.
type Repositories struct {
	Interviews *entity.Repository[domain.Interview]
	Prompts    *entity.Repository[domain.Prompt]
	Reports    *entity.Repository[domain.AggregateReport]
	Programs   *entity.Repository[domain.Program]
	Users      *entity.Repository[domain.User]
}

// NewRepositories wires every collection to store, seeded from catalog.
func NewRepositories(store domain.KVStore, catalog *seed.Catalog, gen seed.GeneratorOptions, logger *slog.Logger) *Repositories {
	return &Repositories{
		Interviews: entity.NewRepository(store, entity.Collection[domain.Interview]{
			Name: CollectionInterviews,
			ID:   func(i domain.Interview) string { return i.ID },
			Seed: func() []domain.Interview { return catalog.Interviews(gen) },
		}, logger),
		Prompts: entity.NewRepository(store, entity.Collection[domain.Prompt]{
			Name: CollectionPrompts,
			ID:   func(p domain.Prompt) string { return p.ID },
			Seed: catalog.Prompts,
		}, logger),
		Reports: entity.NewRepository(store, entity.Collection[domain.AggregateReport]{
			Name: CollectionReports,
			ID:   func(r domain.AggregateReport) string { return r.ID },
		}, logger),
		Programs: entity.NewRepository(store, entity.Collection[domain.Program]{
			Name: CollectionPrograms,
			ID:   func(p domain.Program) string { return p.ID },
			Seed: catalog.Programs,
		}, logger),
		Users: entity.NewRepository(store, entity.Collection[domain.User]{
			Name: CollectionUsers,
			ID:   func(u domain.User) string { return u.ID },
			Seed: catalog.Users,
		}, logger),
	}
}

// EnsureSeed seeds every collection that has not been seeded yet.
func (r *Repositories) EnsureSeed(ctx context.Context) error {
	seeders := []interface{ EnsureSeed(context.Context) error }{
		r.Interviews, r.Prompts, r.Programs, r.Users, r.Reports,
	}
	for _, s := range seeders {
		if err := s.EnsureSeed(ctx); err != nil {
			return err
		}
	}
	return nil
}
