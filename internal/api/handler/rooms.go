package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gameday/backend/internal/config"
	"gameday/backend/internal/games"
	"gameday/backend/internal/registry"

	"github.com/gin-gonic/gin"
)

// ListRooms returns the live rooms, newest created first.
func (h *Handler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Registry.ListRooms())
}

type createRoomRequest struct {
	Name   string `json:"name"`
	Lobby  bool   `json:"lobby"`
	GameID string `json:"game_id"`
}

// CreateRoom creates a room by name (reusing an existing live room with the
// same name, case-insensitive), resolves the lobby singleton, or derives a
// room from a scheduled game with an expiry of game end plus 24 hours.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case req.Lobby:
		room, created := h.Registry.GetOrCreateFixed(config.LobbyRoomID, config.LobbyRoomName)
		if created {
			h.Hub.NotifyRoomsChanged()
		}
		c.JSON(http.StatusOK, room)

	case req.GameID != "":
		h.createRoomForGame(c, req.GameID)

	default:
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room name is required"})
			return
		}
		if existing := h.Registry.FindLiveByName(name); existing != nil {
			c.JSON(http.StatusOK, existing)
			return
		}
		room := h.Registry.CreateRoom(name, "", time.Time{})
		h.Hub.NotifyRoomsChanged()
		c.JSON(http.StatusCreated, room)
	}
}

func (h *Handler) createRoomForGame(c *gin.Context, gameID string) {
	game, err := h.Games.GameByID(c.Request.Context(), gameID)
	if errors.Is(err, games.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "schedule service unavailable"})
		return
	}

	// Reuse a live room already derived from this game.
	if detail, err := h.Registry.Get(game.RoomID()); err == nil && !detail.Archived {
		c.JSON(http.StatusOK, detail)
		return
	}

	room := h.Registry.CreateRoom(game.Title(), game.RoomID(), game.EstimatedEnd().Add(config.GameRoomGrace))
	h.Hub.NotifyRoomsChanged()
	c.JSON(http.StatusCreated, room)
}

// GetRoom returns the live view (current participants) or the archived view
// (historical participants) for the id.
func (h *Handler) GetRoom(c *gin.Context) {
	detail, err := h.Registry.Get(c.Param("id"))
	if errors.Is(err, registry.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteRoom removes a live or archived room and purges matching ledger
// entries from every user. The lobby is protected.
func (h *Handler) DeleteRoom(c *gin.Context) {
	err := h.Registry.Delete(c.Param("id"))
	switch {
	case errors.Is(err, registry.ErrProtected):
		c.JSON(http.StatusConflict, gin.H{"error": "the lobby cannot be deleted"})
	case errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	default:
		h.Hub.NotifyRoomsChanged()
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
