package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatrelay/backend/internal/models"
)

// RecentMessages returns the newest persisted messages, newest first, in
// the same envelope shape the websocket broadcasts. Rows past the
// retention window have already been purged and never show up here.
func (h *Handler) RecentMessages(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	msgs, err := h.Store.RecentMessages(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	out := make([]models.ChatMessageEvent, 0, len(msgs))
	for i := range msgs {
		out = append(out, models.NewChatMessageEvent(&msgs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}
