package chathub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// sendBuffer is the per-member outbound backlog. A member that lets
	// this fill up is treated as dead by the dispatcher.
	sendBuffer = 256
)

// WSClient implements Client over a gorilla WebSocket connection using
// the usual two-pump layout: readPump feeds inbound frames to the
// session, writePump drains the send buffer and keeps the connection
// alive with pings.
type WSClient struct {
	conn    *websocket.Conn
	session *Session
	log     zerolog.Logger

	send chan Event
	done chan struct{}
	once sync.Once
}

// NewWSClient wraps an upgraded connection. Attach must be called before Run.
func NewWSClient(conn *websocket.Conn, log zerolog.Logger) *WSClient {
	return &WSClient{
		conn: conn,
		log:  log.With().Str("component", "ws_client").Logger(),
		send: make(chan Event, sendBuffer),
		done: make(chan struct{}),
	}
}

// Attach binds the session that owns this connection.
func (c *WSClient) Attach(s *Session) { c.session = s }

// Run starts the pumps. The caller should have started the session first
// so the join announcement precedes any relayed message.
func (c *WSClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Deliver enqueues the event without blocking. False means the buffer is
// full or the client is shutting down.
func (c *WSClient) Deliver(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// CloseSlow forces the transport shut from outside the pumps. readPump
// then unwinds and runs the session's normal disconnect flow.
func (c *WSClient) CloseSlow() {
	c.once.Do(func() {
		go c.conn.Close()
	})
}

func (c *WSClient) readPump() {
	defer func() {
		close(c.done)
		c.session.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("error reading message")
			}
			break
		}
		c.session.HandleFrame(data)
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, ev.Data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
