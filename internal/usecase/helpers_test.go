package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/winloss/internal/adapter/pii"
	"github.com/V4T54L/winloss/internal/adapter/repository/memory"
	"github.com/V4T54L/winloss/internal/domain/mocks"
	"github.com/V4T54L/winloss/internal/seed"
)

type testEnv struct {
	repos    *Repositories
	feed     *mocks.MockChangeFeed
	notifier *mocks.MockNotifier
	changes  *ChangeLog
	logger   *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := seed.Load()
	if err != nil {
		t.Fatalf("failed to load seed catalog: %v", err)
	}
	repos := NewRepositories(memory.NewKVStore(), catalog, seed.GeneratorOptions{}, logger)
	if err := repos.EnsureSeed(context.Background()); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	feed := &mocks.MockChangeFeed{}
	notifier := &mocks.MockNotifier{}
	redactor := pii.NewRedactor([]string{"email"}, logger)
	return &testEnv{
		repos:    repos,
		feed:     feed,
		notifier: notifier,
		changes:  NewChangeLog(feed, notifier, redactor, nil, logger),
		logger:   logger,
	}
}
