package storage

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"chatrelay/backend/internal/models"
)

// MessageStore is the durable store for chat messages: append-only writes,
// recent-history reads, and the delete-by-age purge used by the retention
// sweep. It never participates in fan-out; the chat engine calls it and
// moves on.
type MessageStore interface {
	// SaveMessage persists one message. On success msg.ID and msg.CreatedAt
	// are populated by the database and the message may be broadcast.
	SaveMessage(msg *models.Message) error

	// RecentMessages returns up to limit messages, newest first.
	RecentMessages(limit int) ([]models.Message, error)

	// DeleteMessagesBefore removes every message created before cutoff and
	// returns the number of rows deleted.
	DeleteMessagesBefore(cutoff time.Time) (int64, error)
}

// Service implements MessageStore on top of PostgreSQL via GORM.
type Service struct {
	DB  *gorm.DB
	log zerolog.Logger
}

// NewService Constructor
func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{DB: db, log: log.With().Str("component", "storage").Logger()}
}

// SaveMessage creates the row and back-fills the durable ID and timestamp
// into msg so the caller can broadcast them.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		s.log.Error().Err(err).Str("username", msg.Username).Msg("failed to save message")
		return err
	}
	return nil
}
