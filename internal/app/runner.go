package app

import (
	"context"
	"log/slog"
	"sync"

	"mfm/internal/engine"
)

// Runner drives a grid from a background goroutine, one Grid.Run round after
// another, so front ends can snapshot the lattice while events are in
// flight.
type Runner struct {
	grid   *engine.Grid
	sched  *engine.Scheduler
	opts   engine.RunOptions
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewRunner returns a stopped runner.
func NewRunner(grid *engine.Grid, sched *engine.Scheduler, opts engine.RunOptions, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{grid: grid, sched: sched, opts: opts, logger: logger.With(slog.String("component", "runner"))}
}

// Start launches the background loop. It is a no-op while the loop is
// already running or after a fatal error.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil || r.err != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go func() {
		defer close(done)
		for ctx.Err() == nil {
			if err := r.grid.Run(ctx, r.sched, r.opts); err != nil {
				r.logger.Error("run stopped", slog.String("error", err.Error()))
				r.mu.Lock()
				r.err = err
				r.mu.Unlock()
				return
			}
		}
	}()
}

// Stop cancels the loop and waits for the current events to finish. It
// returns the fatal error that ended the loop, if any.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	return r.Err()
}

// Running reports whether the background loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Step runs a single round in the caller's goroutine. The loop must be
// stopped.
func (r *Runner) Step(ctx context.Context) error {
	return r.grid.Run(ctx, r.sched, r.opts)
}

// Err returns the fatal error that stopped the loop.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
