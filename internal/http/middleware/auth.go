package middleware

import (
	"net/http"
	"strings"

	"tap_duel/internal/service"

	"github.com/gin-gonic/gin"
)

const DeviceIDKey = "device_id"

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

// DeviceAuth requires a device token, from the Authorization header or the
// token query parameter, and stores its device id in the context.
func DeviceAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		deviceID, err := service.ParseDeviceToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(DeviceIDKey, deviceID)
		c.Next()
	}
}

// OptionalDeviceAuth sets the device id when a valid token is present and
// lets every request through.
func OptionalDeviceAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if deviceID, err := service.ParseDeviceToken(token); err == nil {
				c.Set(DeviceIDKey, deviceID)
			}
		}
		c.Next()
	}
}
