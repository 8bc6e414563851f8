// Package jobs is the deferred job runner: fire-and-forget side tasks
// submitted by the chat path and executed seconds later by a background
// worker. Jobs travel through a Redis list so a restart does not lose
// anything already enqueued. The chat path only ever calls Submit and
// never waits for execution.
package jobs

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Kinds of jobs known to the worker. Submitting an unknown kind is not an
// error at enqueue time; the worker logs and drops it.
const KindLogMessage = "log_message"

// logDelay is how long the worker waits before writing the log line,
// to keep slow logging visibly off the delivery path.
const logDelay = 5 * time.Second

// Job is one unit of deferred work.
type Job struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	Payload    string        `json:"payload"`
	Delay      time.Duration `json:"delay"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// Runner accepts jobs for eventual execution. Submit must not block on the
// job actually running.
type Runner interface {
	Submit(job Job) error
}

// Handler executes one job of a registered kind.
type Handler func(job Job) error

// NewLogMessageJob builds the "log this received message" task submitted
// after every accepted chat line.
func NewLogMessageJob(username string) Job {
	return Job{
		Kind:    KindLogMessage,
		Payload: fmt.Sprintf("Message received from %s.", username),
		Delay:   logDelay,
	}
}

// LogMessageHandler returns the handler for KindLogMessage jobs.
func LogMessageHandler(log zerolog.Logger) Handler {
	return func(job Job) error {
		log.Info().Str("job_id", job.ID).Msg(job.Payload)
		return nil
	}
}
