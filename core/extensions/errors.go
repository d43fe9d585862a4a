package extensions

import "errors"

var (
	// ErrMissingIdentity is returned when a tracking-related layer runs
	// without Identify above it, so no execution id or kind is present in
	// the context.
	ErrMissingIdentity = errors.New("execution identity missing from context")

	// ErrExecutionTimeout is returned when a tracked execution exceeds its
	// configured max execution time and is abandoned.
	ErrExecutionTimeout = errors.New("execution exceeded max execution time")
)
