package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultGameWindow = 7 * 24 * time.Hour

// ListGames proxies the external schedule feed: upcoming games for a team
// within a time window given in hours.
func (h *Handler) ListGames(c *gin.Context) {
	window := defaultGameWindow
	if raw := c.Query("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	upcoming, err := h.Games.UpcomingGames(c.Request.Context(), c.Query("team"), window)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "schedule service unavailable"})
		return
	}
	c.JSON(http.StatusOK, upcoming)
}
