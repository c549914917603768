package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionRateLimit limits how often one device opens match sessions.
// It keys on the device id set by DeviceAuth, so it must run after it.
func SessionRateLimit(maxSessions int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		deviceID := c.GetString(DeviceIDKey)
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "session_rl:" + deviceID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		if !allow(c, key, maxSessions, window, "session:"+c.FullPath()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "session rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
