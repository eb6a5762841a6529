package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/winloss/internal/adapter/repository/redis"
	"github.com/V4T54L/winloss/internal/pkg/config"
	"github.com/V4T54L/winloss/internal/pkg/logger"
	"github.com/V4T54L/winloss/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting change consumer")

	if cfg.RedisURL == "" || cfg.PostgresURL == "" {
		log.Error("the change consumer needs both REDIS_URL and POSTGRES_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	sink := postgres.NewChangeRepository(db, log)
	if err := sink.EnsureSchema(ctx); err != nil {
		log.Error("failed to prepare audit table", "error", err)
		os.Exit(1)
	}

	// Create a unique consumer name for this instance
	consumerName, err := os.Hostname()
	if err != nil {
		log.Warn("could not get hostname for consumer name, using default", "error", err)
		consumerName = "consumer-default"
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewConsumerMetrics(registry)
	metricsServer := &http.Server{Addr: cfg.AdminAddr, Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})}
	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	feed := redisrepo.NewChangeFeed(redisClient, log, cfg.ChangeStream, cfg.ConsumerGroup, cfg.ChangeDLQStream, nil)
	processChanges := usecase.NewProcessChangesUseCase(feed, sink, m, log, usecase.ProcessOptions{
		Group:        cfg.ConsumerGroup,
		Consumer:     consumerName,
		BatchSize:    cfg.ConsumerBatchSize,
		MaxRetries:   cfg.ConsumerMaxRetries,
		RetryBackoff: cfg.ConsumerRetryBackoff,
	})

	processChanges.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}

	log.Info("change consumer shut down gracefully")
}
