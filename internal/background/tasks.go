package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Runner executes best-effort side effects (attempt-counter writes, audit
// emission, stale-row cleanup) detached from the request that spawned them.
// The contract is: never block the caller, never crash the process, and
// funnel every failure to one operator-visible error sink.
//
// Tasks run on a context detached from the request, so a counter write
// started for an abandoned request still completes; the counter's
// correctness matters more than any individual response.
type Runner struct {
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewRunner creates a Runner whose tasks are capped at timeout each.
func NewRunner(logger *slog.Logger, timeout time.Duration) *Runner {
	return &Runner{
		logger:  logger,
		timeout: timeout,
	}
}

// Go submits a task. The task receives a fresh context with the runner's
// timeout. Errors and panics are logged and swallowed. Submissions after
// Shutdown are dropped with a warning.
func (r *Runner) Go(name string, task func(ctx context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("background task dropped, runner is shut down", slog.String("task", name))
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("background task panicked",
					slog.String("task", name),
					slog.Any("panic", p),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := task(ctx); err != nil {
			r.logger.Error("background task failed",
				slog.String("task", name),
				slog.Any("error", err),
			)
		}
	}()
}

// Shutdown stops accepting tasks and waits for in-flight ones, bounded by ctx.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("background tasks still running at shutdown: %w", ctx.Err())
	}
}
