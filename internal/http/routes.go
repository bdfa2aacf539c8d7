package http

import (
	"time"

	"number_rush/internal/config"
	"number_rush/internal/http/handlers"
	"number_rush/internal/http/middleware"
	"number_rush/internal/service"
	"number_rush/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the health probes, the result API under /api/v1 and
// the legacy /api prefix, and the websocket game endpoint.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, results *service.ResultService, hub *ws.Hub) {
	h := handlers.NewHandler(results, cfg.BoardMode)
	healthHandler := handlers.NewHealthHandler(results, cfg.AppVersion, hub.Count)

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	submitRateWindow := time.Duration(cfg.SubmitRateWindow) * time.Second

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit("api_rl", cfg.APIRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, cfg.SubmitRateLimit, submitRateWindow)

	// Legacy /api routes
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit("api_rl", cfg.APIRateLimit, apiRateWindow))

	// Keep old health endpoint for backward compatibility
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, cfg.SubmitRateLimit, submitRateWindow)

	// WebSocket game sessions
	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, submitRateLimit int, submitRateWindow time.Duration) {
	// Submissions share a tighter per-IP limiter
	submitRL := middleware.RedisRateLimit("submit_rl", submitRateLimit, submitRateWindow)

	api.POST("/game-results", submitRL, h.SubmitResult)
	api.GET("/game-results", h.ListResults)
	api.POST("/game-completion", submitRL, h.CompleteGame)
	api.GET("/results", h.RecentResults)

	api.GET("/config", h.GameConfig)
	api.GET("/target-sequence", h.TargetSequence)
}
