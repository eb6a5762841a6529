package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/winloss/internal/adapter/repository/memory"
	"github.com/V4T54L/winloss/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/winloss/internal/adapter/repository/redis"
	"github.com/V4T54L/winloss/internal/adapter/repository/sqlite"
	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/pkg/config"
)

// openStore connects the KV collaborator selected by STORE_DRIVER. The
// returned cleanup closes whatever connection was opened.
func openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) (domain.KVStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisrepo.NewKVStore(redisClient, cfg.RedisNamespace, logger), func() {}, nil

	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres connection: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		store := postgres.NewKVStore(db, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewKVStore(), func() {}, nil
	}
}
