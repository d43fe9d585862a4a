package config

import "errors"

var (
	// ErrNilConfig is returned when Load is called with a nil pointer.
	ErrNilConfig = errors.New("config target is nil")

	// ErrParseFailed is returned when the environment cannot be parsed
	// into the config struct, usually because a required variable is
	// missing or malformed.
	ErrParseFailed = errors.New("failed to parse environment")
)
