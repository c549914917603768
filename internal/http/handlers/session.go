package handlers

import (
	"net/http"
	"time"

	"tap_duel/internal/logger"
	"tap_duel/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionResponse struct {
	DeviceID  string `json:"device_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// CreateSession issues a device token. A caller that already holds a valid
// token keeps its device id, so the stored mute flag survives renewal.
func (h *Handler) CreateSession(c *gin.Context) {
	deviceID, ok := getDeviceID(c)
	if !ok {
		var err error
		deviceID, err = service.NewDeviceID()
		if err != nil {
			logger.Error("device id generation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	token, err := service.GenerateDeviceToken(deviceID)
	if err != nil {
		logger.Error("device token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		DeviceID:  deviceID,
		Token:     token,
		ExpiresAt: time.Now().Add(service.DeviceTokenTTL).UTC().Format(time.RFC3339),
	})
}
