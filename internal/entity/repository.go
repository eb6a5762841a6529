// Package entity provides a generic, KV-backed record store. Each
// collection is configured by a Collection value rather than by subclassing.
package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/V4T54L/winloss/internal/domain"
)

// loadConcurrency bounds parallel Get calls while listing a collection.
const loadConcurrency = 8

// Collection describes one kind of record held in the store.
type Collection[T any] struct {
	// Name is the key namespace, e.g. "interviews".
	Name string
	// ID extracts the record identifier.
	ID func(T) string
	// Seed returns the records written the first time the collection is used.
	// It may be nil.
	Seed func() []T
}

// envelope is the stored form of every record. Seq orders List results.
type envelope struct {
	Seq  int64           `json:"seq"`
	Data json.RawMessage `json:"data"`
}

// Repository stores records of type T in a domain.KVStore.
type Repository[T any] struct {
	store  domain.KVStore
	col    Collection[T]
	logger *slog.Logger
	now    func() time.Time

	seedMu sync.Mutex
	seeded atomic.Bool
}

// NewRepository creates a repository for col on top of store.
func NewRepository[T any](store domain.KVStore, col Collection[T], logger *slog.Logger) *Repository[T] {
	return &Repository[T]{
		store:  store,
		col:    col,
		logger: logger.With("component", "entity_store", "collection", col.Name),
		now:    time.Now,
	}
}

// Name returns the collection name.
func (r *Repository[T]) Name() string { return r.col.Name }

func (r *Repository[T]) prefix() string { return "rec/" + r.col.Name + "/" }

func (r *Repository[T]) key(id string) string { return r.prefix() + id }

func (r *Repository[T]) seedMarker() string { return "meta/" + r.col.Name + "/seeded" }

// List returns every record, seed records first in seed order and then
// created records in creation order.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	keys, err := r.store.ListKeys(ctx, r.prefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.col.Name, err)
	}

	loaded := make([]*envelope, len(keys))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			env, found, err := r.load(gCtx, key)
			if err != nil {
				return err
			}
			if found {
				loaded[i] = env
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type entry struct {
		seq  int64
		id   string
		data json.RawMessage
	}
	entries := make([]entry, 0, len(keys))
	for i, env := range loaded {
		// nil when the key was deleted between ListKeys and Get.
		if env == nil {
			continue
		}
		entries = append(entries, entry{seq: env.Seq, id: strings.TrimPrefix(keys[i], r.prefix()), data: env.Data})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].seq != entries[b].seq {
			return entries[a].seq < entries[b].seq
		}
		return entries[a].id < entries[b].id
	})

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var rec T
		if err := json.Unmarshal(e.data, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", r.col.Name, e.id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get returns the record with id, or an error wrapping domain.ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	env, found, err := r.load(ctx, r.key(id))
	if err != nil {
		return rec, err
	}
	if !found {
		return rec, fmt.Errorf("%s %q: %w", r.col.Name, id, domain.ErrNotFound)
	}
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s/%s: %w", r.col.Name, id, err)
	}
	return rec, nil
}

// Exists reports whether a record with id is stored.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	_, found, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		return false, fmt.Errorf("failed to check %s/%s: %w", r.col.Name, id, err)
	}
	return found, nil
}

// Create persists rec under its id. An existing record with the same id is
// replaced in place and keeps its list position.
func (r *Repository[T]) Create(ctx context.Context, rec T) (T, error) {
	id := r.col.ID(rec)
	if id == "" {
		return rec, domain.BadRequest("record id is required")
	}
	seq := r.now().UnixNano()
	env, found, err := r.load(ctx, r.key(id))
	if err != nil {
		return rec, err
	}
	if found {
		seq = env.Seq
	}
	if err := r.save(ctx, id, seq, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Patch shallow-merges fields over the stored record and returns the result.
// The "id" field is never changed.
func (r *Repository[T]) Patch(ctx context.Context, id string, fields map[string]any) (T, error) {
	var rec T
	env, found, err := r.load(ctx, r.key(id))
	if err != nil {
		return rec, err
	}
	if !found {
		return rec, fmt.Errorf("%s %q: %w", r.col.Name, id, domain.ErrNotFound)
	}

	var merged map[string]any
	if err := json.Unmarshal(env.Data, &merged); err != nil {
		return rec, fmt.Errorf("failed to decode %s/%s: %w", r.col.Name, id, err)
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return rec, fmt.Errorf("failed to encode patched %s/%s: %w", r.col.Name, id, err)
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, domain.BadRequestf("invalid field value: %v", err)
	}

	if err := r.save(ctx, id, env.Seq, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Delete removes the record with id and reports whether it existed.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.store.Delete(ctx, r.key(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", r.col.Name, id, err)
	}
	return deleted, nil
}

// EnsureSeed writes the seed records the first time the collection is used.
// It is safe to call on every request.
func (r *Repository[T]) EnsureSeed(ctx context.Context) error {
	if r.seeded.Load() {
		return nil
	}
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	if r.seeded.Load() {
		return nil
	}

	_, found, err := r.store.Get(ctx, r.seedMarker())
	if err != nil {
		return fmt.Errorf("failed to read seed marker for %s: %w", r.col.Name, err)
	}
	if !found {
		var records []T
		if r.col.Seed != nil {
			records = r.col.Seed()
		}
		for i, rec := range records {
			if err := r.save(ctx, r.col.ID(rec), int64(i), rec); err != nil {
				return fmt.Errorf("failed to seed %s: %w", r.col.Name, err)
			}
		}
		marker := []byte(r.now().UTC().Format(time.RFC3339))
		if err := r.store.Put(ctx, r.seedMarker(), marker); err != nil {
			return fmt.Errorf("failed to write seed marker for %s: %w", r.col.Name, err)
		}
		r.logger.Info("seeded collection", "count", len(records))
	}

	r.seeded.Store(true)
	return nil
}

func (r *Repository[T]) load(ctx context.Context, key string) (*envelope, bool, error) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("failed to decode envelope %s: %w", key, err)
	}
	return &env, true, nil
}

func (r *Repository[T]) save(ctx context.Context, id string, seq int64, rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", r.col.Name, id, err)
	}
	raw, err := json.Marshal(envelope{Seq: seq, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode envelope %s/%s: %w", r.col.Name, id, err)
	}
	if err := r.store.Put(ctx, r.key(id), raw); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", r.col.Name, id, err)
	}
	return nil
}
