package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 200

// KVStore implements domain.KVStore with plain Redis strings. Every key is
// stored under a namespace so several deployments can share one server.
type KVStore struct {
	client    *redis.Client
	namespace string
	logger    *slog.Logger
}

// NewKVStore creates a Redis-backed KV store. An empty namespace stores keys as-is.
func NewKVStore(client *redis.Client, namespace string, logger *slog.Logger) *KVStore {
	if namespace != "" && !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return &KVStore{
		client:    client,
		namespace: namespace,
		logger:    logger.With("component", "redis_kv_store"),
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to GET %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to SET %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.namespace+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to DEL %s: %w", key, err)
	}
	return n > 0, nil
}

// ListKeys walks the keyspace with SCAN. Glob metacharacters in the prefix
// are escaped so the match stays literal.
func (s *KVStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(s.namespace+prefix) + "*"
	keys := make([]string, 0)

	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to SCAN prefix %s: %w", prefix, err)
	}
	return keys, nil
}

// Close is a no-op; the client is shared with the change feed and closed by main.
func (s *KVStore) Close() error { return nil }

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
