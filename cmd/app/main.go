package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tap_duel/internal/assets"
	"tap_duel/internal/config"
	"tap_duel/internal/db"
	httpServer "tap_duel/internal/http"
	"tap_duel/internal/http/middleware"
	"tap_duel/internal/logger"
	"tap_duel/internal/repository"
	"tap_duel/internal/service"
	"tap_duel/internal/store"
	"tap_duel/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if err := service.InitJWT(cfg.JWTSecret); err != nil {
		logger.Fatal("jwt init failed", "error", err)
	}

	matchCfg, err := config.LoadMatch(cfg.MatchConfigPath)
	if err != nil {
		logger.Fatal("match config", "error", err)
	}

	var kv store.KV = store.NewMemory()
	rdb := store.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
		kv = store.NewRedis(rdb, 0)
	}
	middleware.InitRedisRateLimiter(rdb)

	dbPool := db.Connect(cfg.DatabaseURL)
	history := service.NewHistoryService(nil)
	if dbPool != nil {
		defer dbPool.Close()
		history = service.NewHistoryService(repository.NewMatchRepository(dbPool))
	}

	hub := ws.NewHub(ws.SessionConfig{
		Match:     matchCfg,
		Store:     kv,
		Loader:    assets.NewLoader(os.DirFS(cfg.AssetDir), 0),
		History:   history,
		RefreshHz: cfg.RefreshHz,
	})
	hub.StartCleanup(time.Minute, cfg.SessionIdle)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for a frontend served from another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:  cfg,
		Match:   matchCfg,
		DB:      dbPool,
		Redis:   rdb,
		History: history,
		Hub:     hub,
		Version: version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "match", matchCfg.Settings.Name, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := hub.Shutdown(ctx); err != nil {
		logger.Error("sessions did not stop in time", "error", err)
	}
	history.Wait()

	logger.Info("server exited")
}
