package http

import (
	"net/http"
	"time"

	"tap_duel/internal/config"
	"tap_duel/internal/http/handlers"
	"tap_duel/internal/http/middleware"
	"tap_duel/internal/service"
	"tap_duel/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the routes need. DB and Redis may be nil.
type Deps struct {
	Config  *config.Config
	Match   config.MatchConfig
	DB      *pgxpool.Pool
	Redis   *redis.Client
	History *service.HistoryService
	Hub     *ws.Hub
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.History, d.Match)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Redis, d.Hub.Count, d.Version)

	r.Use(middleware.RequestMetrics())

	// Health checks (no rate limiting)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiRateLimit, apiRateWindow := cfg.APIRateLimit, cfg.APIRateWindow
	if apiRateLimit <= 0 {
		apiRateLimit = 60
	}
	if apiRateWindow <= 0 {
		apiRateWindow = time.Minute
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(apiRateLimit, apiRateWindow))
	{
		v1.POST("/session", middleware.OptionalDeviceAuth(), h.CreateSession)
		v1.GET("/config", h.MatchConfig)
		v1.GET("/matches", h.Matches)
		v1.GET("/leaderboard", h.Leaderboard)
	}

	sessionRateLimit, sessionRateWindow := cfg.SessionRateLimit, cfg.SessionRateWindow
	if sessionRateLimit <= 0 {
		sessionRateLimit = 10
	}
	if sessionRateWindow <= 0 {
		sessionRateWindow = time.Minute
	}
	sessionRL := middleware.SessionRateLimit(sessionRateLimit, sessionRateWindow)
	r.GET("/ws", middleware.DeviceAuth(), sessionRL, ws.HandleWS(d.Hub, cfg.AllowedOrigin))

	if cfg.AssetDir != "" {
		r.StaticFS(ws.AssetBase, gin.Dir(cfg.AssetDir, false))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}
