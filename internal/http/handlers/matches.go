package handlers

import (
	"errors"
	"net/http"

	"tap_duel/internal/service"

	"github.com/gin-gonic/gin"
)

// Matches lists recent finished matches, optionally for one device.
func (h *Handler) Matches(c *gin.Context) {
	matches, err := h.History.Recent(c.Request.Context(), c.Query("device"), queryInt(c, "limit"))
	if err != nil {
		historyError(c, err, "failed to get matches")
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// Leaderboard aggregates wins per player name.
func (h *Handler) Leaderboard(c *gin.Context) {
	top, err := h.History.Leaderboard(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		historyError(c, err, "failed to get leaderboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

func historyError(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrHistoryDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// MatchConfig returns the configuration new sessions start with.
func (h *Handler) MatchConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Match)
}
