// Package chathub is the connection-group broadcast engine: the room
// registry, the per-room ordered dispatcher, and the per-connection
// session state machine that ties a websocket to both.
package chathub

import "encoding/json"

// Event is one outbound envelope, marshaled once at publish time and
// delivered verbatim to every member. Kind is kept alongside the payload
// for logging only.
type Event struct {
	Kind string
	Data []byte
}

// NewEvent marshals a wire payload into a broadcast envelope.
func NewEvent(kind string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: kind, Data: data}, nil
}

// Client is the transport-facing side of one connection as the hub sees
// it. It abstracts the underlying socket so the registry and dispatcher
// never touch a websocket directly.
type Client interface {
	// Deliver hands the event to the client's send buffer without
	// blocking. It reports false when the buffer is full or the client
	// is gone; the caller treats that as a dead transport.
	Deliver(ev Event) bool

	// CloseSlow tears the connection down asynchronously. It is safe to
	// call from the dispatch path and returns immediately; the client's
	// own disconnect flow (leave announcement included) runs elsewhere.
	CloseSlow()
}
