// Package retention evicts old message rows on a fixed cadence. The chat
// engine never calls this directly; its only visible effect is that
// messages older than the retention window disappear from history queries.
package retention

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Store is the slice of the message store the sweeper needs.
type Store interface {
	DeleteMessagesBefore(cutoff time.Time) (int64, error)
}

// Defaults matching the production schedule: purge every minute, keep
// ten minutes of history.
const (
	DefaultSpec   = "@every 1m"
	DefaultWindow = 10 * time.Minute
)

// Sweeper runs the purge on a cron schedule.
type Sweeper struct {
	store  Store
	window time.Duration
	spec   string
	log    zerolog.Logger

	c *cron.Cron
}

// New creates a sweeper. Zero window and empty spec fall back to defaults.
func New(store Store, window time.Duration, spec string, log zerolog.Logger) *Sweeper {
	if window <= 0 {
		window = DefaultWindow
	}
	if spec == "" {
		spec = DefaultSpec
	}
	return &Sweeper{
		store:  store,
		window: window,
		spec:   spec,
		log:    log.With().Str("component", "retention").Logger(),
	}
}

// Start schedules the sweep. Returns an error only for an invalid spec.
func (s *Sweeper) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.c = c
	c.Start()
	s.log.Info().Str("spec", s.spec).Dur("window", s.window).Msg("retention sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
	s.c = nil
	s.log.Info().Msg("retention sweep stopped")
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.window)
	n, err := s.store.DeleteMessagesBefore(cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("purged old messages")
	}
}
