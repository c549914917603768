package ws

import (
	"math"
	"net/http"
	"strconv"

	"tap_duel/internal/http/middleware"
	"tap_duel/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades an authenticated request and opens a match session.
// Query parameters w, h and font describe the browser surface.
func HandleWS(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16384,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		deviceID := c.GetString(middleware.DeviceIDKey)
		if deviceID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		width := queryFloat(c, "w", DefaultWidth)
		height := queryFloat(c, "h", DefaultHeight)
		font := queryFloat(c, "font", DefaultFontSize)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(deviceID, conn)
		s := hub.Open(client, deviceID, width, height, font)
		go client.Run(s)
	}
}

// maxQueryValue bounds the surface size and font size a client may claim.
const maxQueryValue = 16384

// validSize reports whether v is a usable width, height or font size.
func validSize(v float64) bool {
	return !math.IsNaN(v) && v > 0 && v <= maxQueryValue
}

// queryFloat reads a valid size query value, falling back to def.
func queryFloat(c *gin.Context, key string, def float64) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || !validSize(v) {
		return def
	}
	return v
}
