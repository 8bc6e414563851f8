package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chatrelay/backend/internal/chathub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection and hands it to a new
// session. Identity comes from the optional token query parameter; a
// missing or invalid token means an anonymous session, never a refusal.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	identity := h.resolveIdentity(c.Query("token"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := chathub.NewWSClient(conn, h.log)
	session := chathub.NewSession(h.Room, identity, client, h.Registry, h.Dispatcher, h.Store, h.Jobs, h.log)
	client.Attach(session)

	// Join and announce before the pumps run, so nothing this client
	// sends can be broadcast ahead of its own join event.
	session.Start()
	client.Run()
}
