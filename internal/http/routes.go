package http

import (
	"gala_server/internal/config"
	"gala_server/internal/game"
	"gala_server/internal/http/handlers"
	"gala_server/internal/http/middleware"
	"gala_server/internal/repository"
	"gala_server/internal/ws"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, manager *game.Manager, hub *ws.Hub, store *repository.Store, cfg *config.Config, version string) {
	h := handlers.NewHandler(manager, hub, store, cfg.AdminPassword)
	healthHandler := handlers.NewHealthHandler(store, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// WebSocket transport for players, screens and admins
	r.GET("/ws", h.WS())

	api := r.Group("/api")
	api.GET("/game/status", middleware.SimpleRateLimit(60, cfg.AuthRateWindow), h.Status)

	// Admin login is brute-force sensitive; redis-backed limiter with
	// in-memory fallback when redis is absent.
	api.POST("/admin/login",
		middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow),
		middleware.SimpleRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow),
		h.Login)

	admin := api.Group("/admin", middleware.AdminAuth())
	admin.POST("/warmup/start", h.StartWarmup)
	admin.POST("/round/start", h.StartRound)
	admin.POST("/round/end", h.EndRound)
	admin.POST("/quiz/start", h.StartQuiz)
	admin.POST("/question", h.NextQuestion)
	admin.PATCH("/settings", h.UpdateSettings)
	admin.POST("/leaderboard/show", h.ShowLeaderboard)
	admin.POST("/reset", h.Reset)
}
