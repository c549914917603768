package handlers

import (
	"strconv"

	"tap_duel/internal/config"
	"tap_duel/internal/http/middleware"
	"tap_duel/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	History *service.HistoryService
	Match   config.MatchConfig
}

func NewHandler(history *service.HistoryService, match config.MatchConfig) *Handler {
	return &Handler{History: history, Match: match}
}

// getDeviceID extracts device_id set by DeviceAuth
func getDeviceID(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.DeviceIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// queryInt reads a non-negative integer query parameter; 0 when absent or bad
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
