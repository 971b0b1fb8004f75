package handler

import (
	"errors"
	"net/http"

	"gameday/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// GetUser looks a user up in the directory by id.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Param("id"))
	if errors.Is(err, storage.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserRooms returns the user's join ledger: enriched, one entry per room,
// newest joins first.
func (h *Handler) GetUserRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Registry.Ledger(c.Param("id")))
}
