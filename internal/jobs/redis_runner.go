package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// blockTimeout bounds each BRPOP so the worker notices Stop promptly.
const blockTimeout = time.Second

// ErrNotStarted is returned by Submit before Start has been called.
var ErrNotStarted = errors.New("jobs: runner not started")

// RedisRunner implements Runner on a Redis list: Submit LPUSHes a JSON
// payload, a single worker goroutine BRPOPs and executes it. Execution
// failures are logged and dropped; nothing flows back to the submitter.
type RedisRunner struct {
	rdb *redis.Client
	key string
	log zerolog.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewRedisRunner creates a runner draining the given list key.
func NewRedisRunner(rdb *redis.Client, key string, log zerolog.Logger) *RedisRunner {
	return &RedisRunner{
		rdb:      rdb,
		key:      key,
		log:      log.With().Str("component", "jobs").Logger(),
		handlers: make(map[string]Handler),
	}
}

// Register installs the handler for a job kind. Must be called before Start.
func (r *RedisRunner) Register(kind string, h Handler) {
	r.mu.Lock()
	r.handlers[kind] = h
	r.mu.Unlock()
}

// Submit enqueues the job. It returns once the job is on the queue; the
// job itself may run seconds later.
func (r *RedisRunner) Submit(job Job) error {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		return ErrNotStarted
	}

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.EnqueuedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.rdb.LPush(ctx, r.key, data).Err()
}

// Start launches the worker goroutine.
func (r *RedisRunner) Start() {
	r.mu.Lock()
	if r.ctx != nil {
		r.mu.Unlock()
		return
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	ctx := r.ctx
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.work(ctx)
	}()
	r.log.Info().Str("queue", r.key).Msg("job runner started")
}

// Stop cancels the worker and waits for the in-flight job to finish.
func (r *RedisRunner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.ctx, r.cancel = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
	r.log.Info().Msg("job runner stopped")
}

func (r *RedisRunner) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := r.rdb.BRPop(ctx, blockTimeout, r.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			r.log.Error().Err(err).Msg("queue read failed")
			// Back off so a dead Redis does not spin the worker.
			select {
			case <-ctx.Done():
				return
			case <-time.After(blockTimeout):
			}
			continue
		}
		if len(res) == 2 {
			r.process(ctx, []byte(res[1]))
		}
	}
}

// process decodes and executes one dequeued job. Never returns an error:
// every failure mode is logged and swallowed here.
func (r *RedisRunner) process(ctx context.Context, data []byte) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		r.log.Error().Err(err).Msg("dropping undecodable job")
		return
	}

	if job.Delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(job.Delay):
		}
	}

	r.mu.Lock()
	h := r.handlers[job.Kind]
	r.mu.Unlock()
	if h == nil {
		r.log.Warn().Str("kind", job.Kind).Str("job_id", job.ID).Msg("dropping job of unknown kind")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("job_id", job.ID).Msg("panic in job handler")
		}
	}()
	if err := h(job); err != nil {
		r.log.Error().Err(err).Str("kind", job.Kind).Str("job_id", job.ID).Msg("job failed")
	}
}
