package handler

import (
	"errors"
	"net/http"
	"os"
	"time"

	"gameday/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("gameday-dev-secret")
}

// generateJWT issues a token carrying the guest id.
func generateJWT(guestID string) (string, error) {
	claims := jwt.MapClaims{
		"guest_id": guestID,
		"exp":      time.Now().Add(config.TokenTTL).Unix(),
		"iss":      "gameday-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// parseGuestID validates a token and extracts the guest id claim.
func parseGuestID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	guestID, _ := claims["guest_id"].(string)
	if guestID == "" {
		return "", errors.New("missing guest_id claim")
	}
	return guestID, nil
}

// GetGuestToken mints a guest identity, registers it in the user directory,
// and returns a JWT for the websocket upgrade.
func (h *Handler) GetGuestToken(c *gin.Context) {
	guestID := uuid.New().String()

	if h.Store != nil {
		if _, err := h.Store.SaveUserIfNotExists(guestID, config.GuestName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register guest"})
			return
		}
	}

	token, err := generateJWT(guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "guest_id": guestID})
}
