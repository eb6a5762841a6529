package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/winloss/internal/adapter/api/handler"
	"github.com/V4T54L/winloss/internal/usecase"
)

// NewAdminRouter creates and configures the HTTP router for change stream
// operations. adminUseCase may be nil when no change feed is configured, in
// which case only the health check is served.
func NewAdminRouter(adminUseCase *usecase.AdminStreamUseCase, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	adminHandler := handler.NewAdminHandler(adminUseCase, logger)

	mux.HandleFunc("GET /health", adminHandler.HealthCheck)
	if adminUseCase == nil {
		return mux
	}

	// Stream Info
	mux.HandleFunc("GET /admin/streams/{streamName}/groups", adminHandler.GetGroupInfo)
	mux.HandleFunc("GET /admin/streams/{streamName}/groups/{groupName}/consumers", adminHandler.GetConsumerInfo)

	// Pending change events
	mux.HandleFunc("GET /admin/streams/{streamName}/groups/{groupName}/pending", adminHandler.GetPendingSummary)
	mux.HandleFunc("GET /admin/streams/{streamName}/groups/{groupName}/pending/messages", adminHandler.GetPendingMessages)

	// Stream Operations
	mux.HandleFunc("POST /admin/streams/{streamName}/groups/{groupName}/claim", adminHandler.ClaimMessages)
	mux.HandleFunc("POST /admin/streams/{streamName}/groups/{groupName}/ack", adminHandler.AcknowledgeMessages)
	mux.HandleFunc("POST /admin/streams/{streamName}/trim", adminHandler.TrimStream)

	return mux
}
