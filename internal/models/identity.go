package models

// AnonymousUsername is the display name used for connections that did not
// present a valid token. Anonymous connections are never rejected.
const AnonymousUsername = "Anonymous"

// Identity is the resolved identity of one connection, fixed for the
// session's lifetime. The same identity is used for the join announcement,
// every message, and the leave announcement.
type Identity struct {
	// AnonID is the per-session identifier carried in the token
	// (a fresh UUID for anonymous connections).
	AnonID string
	// Username is the display name, "Anonymous" when unauthenticated.
	Username string
	// Authenticated reports whether a valid token with a username was presented.
	Authenticated bool
}

// Anonymous returns the identity used when no valid token was presented.
func Anonymous(anonID string) Identity {
	return Identity{AnonID: anonID, Username: AnonymousUsername, Authenticated: false}
}
