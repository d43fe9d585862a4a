package async

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Runner executes detached background work on behalf of a long-lived host
// process. Work submitted via Go outlives the submitting request: the
// caller's context values carry over, its cancellation does not. The host
// owns the runner's lifecycle and drains it with Shutdown, which makes a
// runner handle the natural prerequisite for fire-and-forget execution
// paths.
type Runner struct {
	log *slog.Logger

	mu      sync.Mutex
	wg      sync.WaitGroup
	closed  bool
	cancels map[uint64]context.CancelFunc
	nextID  uint64
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger for task lifecycle events. Defaults to
// a discard logger.
func WithRunnerLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRunner creates a runner ready to accept work.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		cancels: make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Go runs fn detached from the caller's cancellation. The derived context
// keeps ctx's values, so identity attached upstream remains visible to
// fn. The task is tracked until fn returns; its error and any panic are
// logged, not returned, because no caller is left to receive them.
func (r *Runner) Go(ctx context.Context, fn func(context.Context) error) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return ErrRunnerClosed
	}
	id := r.nextID
	r.nextID++
	r.cancels[id] = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	future := Exec(runCtx, fn, func(taskCtx context.Context, task func(context.Context) error) error {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.ErrorContext(taskCtx, "background task panicked", slog.Any("panic", rec))
			}
		}()
		return task(taskCtx)
	})

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.cancels, id)
			r.mu.Unlock()
			cancel()
			r.wg.Done()
		}()

		if err := future.Await(); err != nil {
			r.log.ErrorContext(runCtx, "background task failed", slog.Any("error", err))
			return
		}
		r.log.DebugContext(runCtx, "background task completed")
	}()

	return nil
}

// Shutdown stops accepting work and waits for in-flight tasks. When ctx
// expires first, remaining tasks have their contexts canceled and
// Shutdown keeps waiting for them to return, so no goroutine is left
// running past it.
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
	}

	r.mu.Lock()
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()

	<-done
	return fmt.Errorf("runner shutdown: %w", ctx.Err())
}
