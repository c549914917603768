package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// HealthHandler handles health check endpoints. db and redis are optional.
type HealthHandler struct {
	db        *pgxpool.Pool
	redis     *redis.Client
	sessions  func() int
	startTime time.Time
	version   string
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client, sessions func() int, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     rdb,
		sessions:  sessions,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness returns simple alive status (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings every configured backend
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	var pingDB, pingRedis func(context.Context) error
	if h.db != nil {
		pingDB = h.db.Ping
	}
	if h.redis != nil {
		pingRedis = func(ctx context.Context) error { return h.redis.Ping(ctx).Err() }
	}
	for name, ping := range map[string]func(context.Context) error{"database": pingDB, "redis": pingRedis} {
		checks[name] = checkBackend(ctx, ping)
		if checks[name] == "unhealthy" {
			allHealthy = false
		}
	}

	if h.sessions != nil {
		checks["sessions"] = fmt.Sprintf("%d", h.sessions())
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// checkBackend reports a backend as disabled, healthy or unhealthy.
func checkBackend(ctx context.Context, ping func(context.Context) error) string {
	switch {
	case ping == nil:
		return "disabled"
	case ping(ctx) != nil:
		return "unhealthy"
	default:
		return "healthy"
	}
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
