package models

import (
	"fmt"
	"time"
)

// Frame and event type discriminators used on the wire.
const (
	FrameTypeChatMessage = "chat_message"

	EventTypeChatMessage = "chat_message"
	EventTypeUserJoined  = "user_joined"
	EventTypeUserLeft    = "user_left"
	EventTypeError       = "error"
)

// InboundFrame is one client-to-server text frame. Type is optional and
// defaults to "chat_message" when absent.
type InboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChatMessageEvent is the fan-out envelope for one accepted chat line.
// MessageID and Timestamp come from the store, so the row is guaranteed
// to exist before any member sees this event.
type ChatMessageEvent struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	Username      string `json:"username"`
	MessageID     uint   `json:"message_id"`
	Timestamp     string `json:"timestamp"`
	Authenticated bool   `json:"is_authenticated"`
}

// PresenceEvent announces a member joining or leaving the room.
type PresenceEvent struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	Username      string `json:"username"`
	Authenticated bool   `json:"is_authenticated"`
}

// ErrorEvent is sent to a single offending connection, never broadcast.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewChatMessageEvent builds the broadcast envelope for a persisted message.
func NewChatMessageEvent(msg *Message) ChatMessageEvent {
	return ChatMessageEvent{
		Type:          EventTypeChatMessage,
		Message:       msg.Body,
		Username:      msg.Username,
		MessageID:     msg.ID,
		Timestamp:     msg.CreatedAt.Format(time.RFC3339),
		Authenticated: msg.Authenticated,
	}
}

// NewUserJoinedEvent builds the join announcement for an identity.
func NewUserJoinedEvent(id Identity) PresenceEvent {
	return PresenceEvent{
		Type:          EventTypeUserJoined,
		Message:       fmt.Sprintf("%s joined the chat", id.Username),
		Username:      id.Username,
		Authenticated: id.Authenticated,
	}
}

// NewUserLeftEvent builds the leave announcement for an identity.
func NewUserLeftEvent(id Identity) PresenceEvent {
	return PresenceEvent{
		Type:          EventTypeUserLeft,
		Message:       fmt.Sprintf("%s left the chat", id.Username),
		Username:      id.Username,
		Authenticated: id.Authenticated,
	}
}

// NewErrorEvent builds a sender-only error reply.
func NewErrorEvent(text string) ErrorEvent {
	return ErrorEvent{Type: EventTypeError, Error: text}
}
