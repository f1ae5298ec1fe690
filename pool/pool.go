// Package pool runs a fixed batch of jobs on a fixed number of workers that
// drain a shared queue. Every job is handled exactly once and a failing job
// never stops its siblings.
package pool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the worker count used when Options.Concurrency is unset.
	DefaultConcurrency = 3

	// DefaultIdleTimeout is how long a worker waits on an empty queue before exiting.
	DefaultIdleTimeout = 3 * time.Second
)

// Handler processes one job. Returned errors and panics are recorded on the
// job's Outcome; they never reach other workers.
type Handler[T, R any] func(ctx context.Context, job T) (R, error)

// Options configures a Run.
type Options struct {
	Concurrency int           // Number of workers (default 3)
	IdleTimeout time.Duration // Idle wait before a worker exits (default 3s)
	Logger      *zap.Logger   // Receives handler failures (default no-op)
}

// Outcome is the result of handling a single job.
type Outcome[T, R any] struct {
	Job      T
	Value    R
	Err      error
	Duration time.Duration
}

// Run enqueues all jobs, starts the workers, and blocks until every job has
// been dequeued and its handler has returned. Outcomes are returned in
// completion order, not input order.
func Run[T, R any](ctx context.Context, jobs []T, handler Handler[T, R], opts Options) []Outcome[T, R] {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// The queue holds every job up front, so producers never block.
	queue := make(chan T, len(jobs))
	var pending sync.WaitGroup
	pending.Add(len(jobs))
	for _, job := range jobs {
		queue <- job
	}

	var (
		mu       sync.Mutex
		outcomes = make([]Outcome[T, R], 0, len(jobs))
	)
	released := make(chan struct{})

	var group errgroup.Group
	for worker := range opts.Concurrency {
		group.Go(func() error {
			idle := time.NewTimer(opts.IdleTimeout)
			defer idle.Stop()
			for {
				select {
				case job := <-queue:
					outcome := handle(ctx, job, handler, logger.With(zap.Int("worker", worker)))
					mu.Lock()
					outcomes = append(outcomes, outcome)
					mu.Unlock()
					pending.Done()

					if !idle.Stop() {
						select {
						case <-idle.C:
						default:
						}
					}
					idle.Reset(opts.IdleTimeout)
				case <-idle.C:
					// Queue stayed empty for the whole idle window: no more work.
					return nil
				case <-released:
					return nil
				}
			}
		})
	}

	// Join barrier: queue empty and nothing in flight.
	pending.Wait()
	close(released)
	_ = group.Wait()

	return outcomes
}

// handle invokes the handler for one job and converts panics into errors.
func handle[T, R any](ctx context.Context, job T, handler Handler[T, R], logger *zap.Logger) (outcome Outcome[T, R]) {
	start := time.Now()
	outcome.Job = job

	defer func() {
		if recovered := recover(); recovered != nil {
			outcome.Err = fmt.Errorf("handler panic: %v", recovered)
			logger.Error("job handler panicked",
				zap.Any("job", job),
				zap.Any("panic", recovered),
				zap.ByteString("stack", debug.Stack()))
		}
		outcome.Duration = time.Since(start)
	}()

	outcome.Value, outcome.Err = handler(ctx, job)
	if outcome.Err != nil {
		logger.Warn("job failed", zap.Any("job", job), zap.Error(outcome.Err))
	}
	return outcome
}
