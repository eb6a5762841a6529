package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/winloss/internal/adapter/api"
	"github.com/V4T54L/winloss/internal/adapter/api/handler"
	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/adapter/pii"
	redisrepo "github.com/V4T54L/winloss/internal/adapter/repository/redis"
	"github.com/V4T54L/winloss/internal/adapter/repository/wal"
	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/pkg/config"
	"github.com/V4T54L/winloss/internal/pkg/logger"
	"github.com/V4T54L/winloss/internal/seed"
	"github.com/V4T54L/winloss/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewAPIMetrics(registry)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Redis (store driver and/or change feed) ---
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
	}

	// --- Entity Store ---
	store, closeStore, err := openStore(ctx, cfg, redisClient, logger)
	if err != nil {
		logger.Error("failed to open entity store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	catalog, err := seed.Load()
	if err != nil {
		logger.Error("failed to load seed catalog", "error", err)
		os.Exit(1)
	}
	repos := usecase.NewRepositories(store, catalog, seed.GeneratorOptions{
		Count: cfg.SeedRandomInterviews,
		Seed:  cfg.SeedRandomSeed,
	}, logger)
	if err := repos.EnsureSeed(ctx); err != nil {
		logger.Error("failed to seed entity store", "error", err)
		os.Exit(1)
	}

	// --- Change Feed (optional) ---
	var feed domain.ChangeFeed
	var adminUseCase *usecase.AdminStreamUseCase
	if cfg.ChangeFeed {
		walLog, err := wal.Open(wal.Options{
			Dir:            cfg.WALPath,
			MaxSegmentSize: cfg.WALSegmentSize,
			MaxTotalSize:   cfg.WALMaxDiskSize,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize WAL", "error", err)
			os.Exit(1)
		}
		defer walLog.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, change events go to the WAL until it recovers", "error", err)
		}
		changeFeed := redisrepo.NewChangeFeed(redisClient, logger, cfg.ChangeStream, "", cfg.ChangeDLQStream, walLog)
		changeFeed.OnAvailabilityChange(func(available bool) {
			if available {
				m.WALActive.Set(0)
			} else {
				m.WALActive.Set(1)
			}
		})
		go changeFeed.StartHealthCheck(ctx, 5*time.Second)
		feed = changeFeed

		adminUseCase = usecase.NewAdminStreamUseCase(redisrepo.NewAdminRepository(redisClient, logger), cfg.ChangeStream, cfg.ChangeDLQStream)
	}

	// --- Initialize SSE Broker ---
	sseBroker := handler.NewSSEBroker(ctx, logger)

	// --- Initialize Use Cases ---
	redactor := pii.NewRedactor(cfg.RedactionFields(), logger)
	changes := usecase.NewChangeLog(feed, sseBroker, redactor, m, logger)
	services := api.Services{
		Interviews: usecase.NewInterviewUseCase(repos.Interviews, changes, logger),
		Prompts:    usecase.NewPromptUseCase(repos.Prompts, changes),
		Reports:    usecase.NewReportUseCase(repos.Reports, repos.Prompts, changes, logger),
		Users:      usecase.NewUserUseCase(repos.Users, changes),
		Dashboard:  usecase.NewDashboardUseCase(repos.Interviews, repos.Programs, logger),
		Chat:       usecase.NewChatUseCase(cfg.ChatDelay),
	}

	// --- Start Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	adminMux.Handle("/", api.NewAdminRouter(adminUseCase, logger))
	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Initialize API Server ---
	apiServer := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     api.NewRouter(cfg, logger, services, m, sseBroker),
		ReadTimeout: 5 * time.Second,
		// No WriteTimeout: /api/events streams for as long as the client stays.
		IdleTimeout: 60 * time.Second,
		// Cancelling request contexts on shutdown releases open event streams.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("starting api server", "addr", apiServer.Addr, "store", cfg.StoreDriver, "change_feed", cfg.ChangeFeed)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
