package handler

import (
	"errors"
	"net/http"
	"strings"

	"gameday/backend/internal/hub"
	"gameday/backend/internal/models"
	"gameday/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Lock down in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the session with the
// hub. A guest token is optional: identity can also arrive later in the
// join_room payload, and a session without either gets a generated guest id
// on its first join.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	var userID, userName string
	if token := bearerToken(c); token != "" {
		guestID, err := parseGuestID(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		userID = guestID
		if h.Store != nil {
			if user, err := h.Store.GetUserByID(guestID); err == nil {
				userName = user.Name
			} else if !errors.Is(err, storage.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User lookup failed"})
				return
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &hub.WebSocketClient{
		SessionID: uuid.New().String(),
		UserID:    userID,
		UserName:  userName,
		Conn:      conn,
		Hub:       h.Hub,
		Send:      make(chan models.Event, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}

func bearerToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return auth[7:]
	}
	return ""
}
