package chathub

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/backend/internal/jobs"
	"chatrelay/backend/internal/models"
	"chatrelay/backend/internal/storage"
)

// Error texts sent to the offending connection only.
const (
	errInvalidJSON  = "Invalid JSON format"
	errEmptyMessage = "Message cannot be empty"
	errProcessing   = "An error occurred while processing your message"
)

type sessionState int

const (
	stateConnecting sessionState = iota
	stateActive
	stateClosed
)

// Session owns one connection's lifecycle: join the room on accept, relay
// inbound frames while active, announce the leave on close. State moves
// Connecting -> Active -> Closed and never back; a reconnecting client is
// always a new session.
type Session struct {
	room       string
	identity   models.Identity
	client     Client
	registry   *Registry
	dispatcher *Dispatcher
	store      storage.MessageStore
	jobs       jobs.Runner
	log        zerolog.Logger

	mu    sync.Mutex
	state sessionState
}

// NewSession wires a session for an accepted connection. Start must be
// called before any frame is handled.
func NewSession(room string, identity models.Identity, client Client, registry *Registry,
	dispatcher *Dispatcher, store storage.MessageStore, runner jobs.Runner, log zerolog.Logger) *Session {
	return &Session{
		room:       room,
		identity:   identity,
		client:     client,
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		jobs:       runner,
		log: log.With().
			Str("component", "session").
			Str("username", identity.Username).
			Str("anon_id", identity.AnonID).
			Logger(),
	}
}

// Identity returns the resolved identity fixed at accept time.
func (s *Session) Identity() models.Identity { return s.identity }

// Start registers the session in the room and announces the join. The
// session itself is already a member when the announcement is published,
// so it receives its own join event like everyone else.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state != stateConnecting {
		s.mu.Unlock()
		return
	}
	s.state = stateActive
	s.mu.Unlock()

	s.registry.Join(s.room, s.client)
	s.publish(models.EventTypeUserJoined, models.NewUserJoinedEvent(s.identity))
	s.log.Info().Str("room", s.room).Msg("user connected to chat")
}

// HandleFrame processes one inbound text frame. Every failure mode here
// degrades to an error event on this connection only; the session stays
// Active no matter what.
func (s *Session) HandleFrame(data []byte) {
	s.mu.Lock()
	active := s.state == stateActive
	s.mu.Unlock()
	if !active {
		return
	}

	var frame models.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.reply(models.NewErrorEvent(errInvalidJSON))
		return
	}

	// An explicit type we do not recognize is accepted and ignored;
	// only an absent type defaults to chat_message.
	if frame.Type != "" && frame.Type != models.FrameTypeChatMessage {
		return
	}

	body := strings.TrimSpace(frame.Message)
	if body == "" {
		s.reply(models.NewErrorEvent(errEmptyMessage))
		return
	}

	msg := &models.Message{
		Body:          body,
		Username:      s.identity.Username,
		Authenticated: s.identity.Authenticated,
	}

	// The store assigns the durable ID and timestamp here; the broadcast
	// below must not happen unless this round trip succeeded.
	if err := s.store.SaveMessage(msg); err != nil {
		s.log.Error().Err(err).Msg("error in receive")
		s.reply(models.NewErrorEvent(errProcessing))
		return
	}

	// Fire-and-forget: the log task may run seconds from now and its
	// outcome is invisible to the chat path.
	if err := s.jobs.Submit(jobs.NewLogMessageJob(s.identity.Username)); err != nil {
		s.log.Warn().Err(err).Msg("failed to submit log job")
	}

	s.publish(models.EventTypeChatMessage, models.NewChatMessageEvent(msg))
}

// Close unregisters the session and announces the leave. Idempotent. The
// announcement is attempted even when this connection's transport is
// already dead — it only needs to reach the remaining members.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	started := s.state == stateActive
	s.state = stateClosed
	s.mu.Unlock()

	if !started {
		return
	}

	s.registry.Leave(s.room, s.client)
	s.publish(models.EventTypeUserLeft, models.NewUserLeftEvent(s.identity))
	s.log.Info().Str("room", s.room).Msg("user disconnected from chat")
}

func (s *Session) publish(kind string, payload any) {
	ev, err := NewEvent(kind, payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", kind).Msg("failed to encode event")
		return
	}
	s.dispatcher.Publish(s.room, ev)
}

// reply sends an error event to this connection only, never the room.
func (s *Session) reply(payload models.ErrorEvent) {
	ev, err := NewEvent(models.EventTypeError, payload)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode error event")
		return
	}
	if !s.client.Deliver(ev) {
		s.client.CloseSlow()
	}
}
