package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatrelay/backend/internal/chathub"
	"chatrelay/backend/internal/jobs"
	"chatrelay/backend/internal/storage"
)

// Handler holds the HTTP surface's references into the chat engine.
type Handler struct {
	Registry   *chathub.Registry
	Dispatcher *chathub.Dispatcher
	Store      storage.MessageStore
	Jobs       jobs.Runner
	Room       string

	secret []byte
	log    zerolog.Logger
}

func NewHandler(registry *chathub.Registry, dispatcher *chathub.Dispatcher, store storage.MessageStore,
	runner jobs.Runner, room string, secret []byte, log zerolog.Logger) *Handler {
	return &Handler{
		Registry:   registry,
		Dispatcher: dispatcher,
		Store:      store,
		Jobs:       runner,
		Room:       room,
		secret:     secret,
		log:        log.With().Str("component", "handler").Logger(),
	}
}

// Health reports liveness plus the current room occupancy.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"members": h.Registry.Size(h.Room),
	})
}
