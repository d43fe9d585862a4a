package extensions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/opsman/core/command"
	"github.com/dmitrymomot/opsman/core/execution"
)

// DefaultHeartbeatInterval is how often a tracked execution refreshes its
// record while the wrapped chain runs.
const DefaultHeartbeatInterval = 10 * time.Second

type trackConfig struct {
	heartbeatInterval time.Duration
	maxExecutionTime  time.Duration
}

// TrackOption configures TrackExecution.
type TrackOption func(*trackConfig)

// WithHeartbeatInterval overrides DefaultHeartbeatInterval.
func WithHeartbeatInterval(interval time.Duration) TrackOption {
	return func(cfg *trackConfig) {
		if interval > 0 {
			cfg.heartbeatInterval = interval
		}
	}
}

// WithMaxExecutionTime bounds how long the wrapped chain may run. When the
// bound is exceeded the record is marked failed with the staleness
// diagnostic, the chain's context is canceled, and ErrExecutionTimeout is
// returned. Zero means unbounded.
func WithMaxExecutionTime(limit time.Duration) TrackOption {
	return func(cfg *trackConfig) {
		if limit > 0 {
			cfg.maxExecutionTime = limit
		}
	}
}

// TrackExecution persists the lifecycle of every execution attempt. It
// creates the in_progress record before the wrapped chain runs, refreshes
// it with periodic heartbeats while the chain is busy, and completes it
// exactly once: succeeded with the JSON-encoded command output, or failed
// with the error text. The command's result passes through unchanged
// either way.
//
// Output that cannot be JSON-encoded marks the record failed and surfaces
// a wrapped encoding error instead of leaving the record in progress
// until the staleness sweep. Requires Identify above it.
func TrackExecution[O any](store execution.Store, opts ...TrackOption) command.Layer[O] {
	cfg := trackConfig{heartbeatInterval: DefaultHeartbeatInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next command.Command[O]) command.Command[O] {
		return command.Func[O](func(ctx context.Context) (O, error) {
			var zero O

			id, kind, err := identity(ctx)
			if err != nil {
				return zero, fmt.Errorf("track execution: %w", err)
			}

			if err := store.Create(ctx, id, kind); err != nil {
				return zero, fmt.Errorf("track execution: create record: %w", err)
			}

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			type result struct {
				out O
				err error
			}
			results := make(chan result, 1)
			go func() {
				out, err := next.Execute(runCtx)
				results <- result{out: out, err: err}
			}()

			heartbeat := time.NewTicker(cfg.heartbeatInterval)
			defer heartbeat.Stop()

			var deadline <-chan time.Time
			if cfg.maxExecutionTime > 0 {
				timer := time.NewTimer(cfg.maxExecutionTime)
				defer timer.Stop()
				deadline = timer.C
			}

			for {
				select {
				case res := <-results:
					if res.err != nil {
						return zero, fail(ctx, store, id, res.err)
					}

					output, err := json.Marshal(res.out)
					if err != nil {
						return zero, fail(ctx, store, id, fmt.Errorf("encode command output: %w", err))
					}
					if err := store.Succeed(ctx, id, output); err != nil {
						return zero, fmt.Errorf("track execution: record success: %w", err)
					}
					return res.out, nil

				case <-heartbeat.C:
					// Best effort. A failed heartbeat only makes the record
					// eligible for the staleness sweep earlier.
					_ = store.Heartbeat(ctx, id)

				case <-deadline:
					cancel()
					err := fmt.Errorf("%w (%s)", ErrExecutionTimeout, cfg.maxExecutionTime)
					if storeErr := store.Fail(ctx, id, execution.StaleExecutionMessage); storeErr != nil {
						return zero, errors.Join(err, fmt.Errorf("track execution: record failure: %w", storeErr))
					}
					return zero, err
				}
			}
		})
	}
}

// fail records the terminal failure and returns the command error,
// joining a store error to it when the write itself fails.
func fail(ctx context.Context, store execution.Store, id uuid.UUID, cmdErr error) error {
	if storeErr := store.Fail(ctx, id, cmdErr.Error()); storeErr != nil {
		return errors.Join(cmdErr, fmt.Errorf("track execution: record failure: %w", storeErr))
	}
	return cmdErr
}
