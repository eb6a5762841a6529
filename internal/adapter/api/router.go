package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/V4T54L/winloss/internal/adapter/api/handler"
	"github.com/V4T54L/winloss/internal/adapter/api/middleware"
	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/pkg/config"
	"github.com/V4T54L/winloss/internal/usecase"
)

// Services are the use cases the dashboard API exposes.
type Services struct {
	Interviews *usecase.InterviewUseCase
	Prompts    *usecase.PromptUseCase
	Reports    *usecase.ReportUseCase
	Users      *usecase.UserUseCase
	Dashboard  *usecase.DashboardUseCase
	Chat       *usecase.ChatUseCase
}

// NewRouter creates and configures the dashboard API router, middleware
// included. m and broker may be nil.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	svc Services,
	m *metrics.APIMetrics,
	broker *handler.SSEBroker,
) http.Handler {
	mux := http.NewServeMux()

	interviews := handler.NewInterviewHandler(svc.Interviews, logger, m, cfg.MaxImportSize)
	prompts := handler.NewPromptHandler(svc.Prompts, logger)
	reports := handler.NewReportHandler(svc.Reports, logger, m)
	users := handler.NewUserHandler(svc.Users, logger)
	dashboard := handler.NewDashboardHandler(svc.Dashboard, svc.Chat, logger)

	// Interviews
	mux.HandleFunc("GET /api/interviews", interviews.List)
	mux.HandleFunc("GET /api/interviews/{id}", interviews.Get)
	mux.HandleFunc("POST /api/interviews/import", interviews.Import)
	mux.HandleFunc("GET /api/share/{id}", interviews.Share)

	// Prompt library
	mux.HandleFunc("GET /api/prompts", prompts.List)
	mux.HandleFunc("POST /api/prompts", prompts.Create)
	mux.HandleFunc("PUT /api/prompts/{id}", prompts.Update)
	mux.HandleFunc("DELETE /api/prompts/{id}", prompts.Delete)

	// Aggregate reports
	mux.HandleFunc("POST /api/reports/generate", reports.Generate)
	mux.HandleFunc("GET /api/reports/aggregate", reports.List)
	mux.HandleFunc("GET /api/reports/aggregate/{id}", reports.Get)

	// Users
	mux.HandleFunc("GET /api/users", users.List)
	mux.HandleFunc("POST /api/users", users.Create)
	mux.HandleFunc("GET /api/users/{id}", users.Get)
	mux.HandleFunc("PUT /api/users/{id}", users.Update)
	mux.HandleFunc("DELETE /api/users/{id}", users.Delete)

	// Dashboard and lookups
	mux.HandleFunc("GET /api/dashboard/stats", dashboard.Stats)
	mux.HandleFunc("GET /api/dashboard/quotes", dashboard.Quotes)
	mux.HandleFunc("GET /api/analytics", dashboard.Analytics)
	mux.HandleFunc("GET /api/competitors", dashboard.Competitors)
	mux.HandleFunc("GET /api/programs", dashboard.Programs)
	mux.HandleFunc("POST /api/chat", dashboard.Chat)

	if broker != nil {
		mux.Handle("GET /api/events", broker)
	}

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		handler.RespondStatus(w, logger, http.StatusNotFound, "Not Found")
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	chain := []func(http.Handler) http.Handler{
		middleware.Recover(logger),
		middleware.Logging(logger),
	}
	if m != nil {
		chain = append(chain, middleware.Metrics(m))
	}
	chain = append(chain, middleware.RateLimit(rate.NewLimiter(limit, cfg.RateLimitBurst), m, logger))

	return middleware.Chain(mux, chain...)
}
