package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"chatrelay/backend/internal/models"
)

const defaultHistoryLimit = 50

// RecentMessages loads the newest messages, most recent first.
// A missing table or empty history is not an error.
func (s *Service) RecentMessages(limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var messages []models.Message
	err := s.DB.Order("created_at desc").Limit(limit).Find(&messages).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return messages, nil
		}
		s.log.Error().Err(err).Msg("failed to load recent messages")
		return nil, err
	}
	return messages, nil
}

// DeleteMessagesBefore hard-deletes rows older than cutoff. Unscoped skips
// GORM's soft-delete so purged rows actually disappear from history queries.
func (s *Service) DeleteMessagesBefore(cutoff time.Time) (int64, error) {
	res := s.DB.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.Message{})
	if res.Error != nil {
		s.log.Error().Err(res.Error).Time("cutoff", cutoff).Msg("failed to purge old messages")
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
