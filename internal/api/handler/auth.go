package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"

	"chatrelay/backend/internal/models"
)

const tokenTTL = 72 * time.Hour

// IssueToken mints a signed token carrying a fresh anonymous ID and the
// optional display name from the username query parameter. Connections
// without a token stay anonymous; this endpoint just lets a client pick
// a name the relay will trust.
func (h *Handler) IssueToken(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	anonID := uuid.New().String()

	claims := jwt.MapClaims{
		"anon_id":  anonID,
		"username": username,
		"exp":      time.Now().Add(tokenTTL).Unix(),
		"iss":      "chatrelay-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed, "anon_id": anonID})
}

// resolveIdentity maps an optional token to the session identity. An
// absent, expired, malformed, or nameless token resolves to Anonymous —
// a connection is never rejected over identity.
func (h *Handler) resolveIdentity(tokenString string) models.Identity {
	if tokenString == "" {
		return models.Anonymous(uuid.New().String())
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Anonymous(uuid.New().String())
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Anonymous(uuid.New().String())
	}

	anonID, _ := claims["anon_id"].(string)
	if anonID == "" {
		anonID = uuid.New().String()
	}
	username, _ := claims["username"].(string)
	if strings.TrimSpace(username) == "" {
		return models.Anonymous(anonID)
	}

	return models.Identity{AnonID: anonID, Username: username, Authenticated: true}
}
