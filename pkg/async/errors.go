package async

import "errors"

var (
	// ErrTimeout is returned when AwaitWithTimeout exceeds its duration.
	ErrTimeout = errors.New("async operation timed out")

	// ErrNoFutures is returned when ExecAny is called with no futures.
	ErrNoFutures = errors.New("no futures provided")

	// ErrRunnerClosed is returned when work is submitted to a runner that
	// has begun shutting down.
	ErrRunnerClosed = errors.New("runner is closed")
)
