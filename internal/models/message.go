package models

import "gorm.io/gorm"

// Message represents a persisted chat line in the PostgreSQL database.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt,
// which serve as the durable message ID and timestamps. A row is immutable
// once created; the only delete path is the retention sweep.
type Message struct {
	gorm.Model

	// Body is the trimmed text of the chat line. Never empty.
	Body string `gorm:"type:text;not null"`
	// Username is the display name the message was sent under
	// ("Anonymous" for unauthenticated connections).
	Username string `gorm:"type:text;not null;index"`
	// Authenticated records whether the sender presented a valid token.
	Authenticated bool `gorm:"not null"`
}
