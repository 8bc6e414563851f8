package chathub

import "sync"

// Registry tracks which clients are members of which room. It is pure
// in-memory bookkeeping: it never owns a client's lifetime and none of
// its operations can fail. All methods are safe for concurrent use from
// every session's goroutine.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[Client]struct{}
}

// NewRegistry Constructor
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[Client]struct{})}
}

// Join adds the client to the room, creating the room on first join.
// Joining twice is a no-op beyond keeping one entry.
func (r *Registry) Join(room string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
}

// Leave removes the client from the room. Removing a client that never
// joined is a no-op: a disconnect may race with a failed connect.
func (r *Registry) Leave(room string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[room]; ok {
		delete(members, c)
	}
}

// Members returns a snapshot of the room's membership at call time.
// Mutations after the snapshot is taken do not affect the returned slice.
func (r *Registry) Members(room string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	out := make([]Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// Size reports the current number of members in the room.
func (r *Registry) Size(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
