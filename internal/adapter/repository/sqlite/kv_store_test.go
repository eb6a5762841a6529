package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/V4T54L/winloss/internal/adapter/repository/kvtest"
)

func openTestStore(t *testing.T, path string) *KVStore {
	t.Helper()
	store, err := Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func TestKVStore(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "kv.db"))
	defer store.Close()
	kvtest.Run(t, store)
}

func TestKVStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kv.db")
	ctx := context.Background()

	store := openTestStore(t, path)
	require.NoError(t, store.Put(ctx, "meta/prompts/seeded", []byte("1")))
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path)
	defer reopened.Close()
	v, found, err := reopened.Get(ctx, "meta/prompts/seeded")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", string(v))
}
