// Package kvtest holds the behavioural suite every domain.KVStore driver
// must pass.
package kvtest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/winloss/internal/domain"
)

// Run exercises store against the KVStore contract. The store must start empty.
func Run(t *testing.T, store domain.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, found, err := store.Get(ctx, "rec/prompts/missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "rec/prompts/p1", []byte(`{"id":"p1"}`)))
		v, found, err := store.Get(ctx, "rec/prompts/p1")
		require.NoError(t, err)
		require.True(t, found)
		assert.JSONEq(t, `{"id":"p1"}`, string(v))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "rec/prompts/p1", []byte(`{"id":"p1","name":"v2"}`)))
		v, _, err := store.Get(ctx, "rec/prompts/p1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"p1","name":"v2"}`, string(v))
	})

	t.Run("list keys by prefix", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "rec/prompts/p2", []byte(`{}`)))
		require.NoError(t, store.Put(ctx, "rec/users/u1", []byte(`{}`)))
		require.NoError(t, store.Put(ctx, "rec/prompts_archive/x", []byte(`{}`)))

		keys, err := store.ListKeys(ctx, "rec/prompts/")
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"rec/prompts/p1", "rec/prompts/p2"}, keys)
	})

	t.Run("prefix with like wildcards is literal", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "rec/a_b/1", []byte(`{}`)))
		require.NoError(t, store.Put(ctx, "rec/axb/1", []byte(`{}`)))
		keys, err := store.ListKeys(ctx, "rec/a_b/")
		require.NoError(t, err)
		assert.Equal(t, []string{"rec/a_b/1"}, keys)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		deleted, err := store.Delete(ctx, "rec/prompts/p2")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Delete(ctx, "rec/prompts/p2")
		require.NoError(t, err)
		assert.False(t, deleted)

		_, found, err := store.Get(ctx, "rec/prompts/p2")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
