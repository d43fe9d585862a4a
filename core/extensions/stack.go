package extensions

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/opsman/core/command"
	"github.com/dmitrymomot/opsman/core/execution"
	"github.com/dmitrymomot/opsman/pkg/async"
)

// Config carries the tunable timings of the standard stacks.
type Config struct {
	// HeartbeatInterval is how often a tracked execution refreshes its
	// record while running.
	HeartbeatInterval time.Duration `env:"OPSMAN_HEARTBEAT_INTERVAL" envDefault:"10s"`
	// MaxInactiveTime is how long an execution may go without activity
	// before the sweep reclassifies it as failed.
	MaxInactiveTime time.Duration `env:"OPSMAN_MAX_INACTIVE_TIME" envDefault:"5m"`
	// MaxExecutionTime bounds a tracked execution's runtime. Zero means
	// unbounded.
	MaxExecutionTime time.Duration `env:"OPSMAN_MAX_EXECUTION_TIME" envDefault:"0"`
}

func (c Config) trackOptions() []TrackOption {
	opts := []TrackOption{WithHeartbeatInterval(c.HeartbeatInterval)}
	if c.MaxExecutionTime > 0 {
		opts = append(opts, WithMaxExecutionTime(c.MaxExecutionTime))
	}
	return opts
}

// Foreground assembles the standard synchronous stack around a command:
// identity, duplicate prevention, stale-record cleanup, then lifecycle
// tracking, with the command innermost. The first behavior listed runs
// first.
func Foreground[O any](store execution.Store, kind execution.Kind, cmd command.Command[O]) command.Command[O] {
	return ForegroundFromConfig(store, kind, cmd, Config{})
}

// ForegroundFromConfig is Foreground with explicit timings. Zero fields
// fall back to the package defaults.
func ForegroundFromConfig[O any](store execution.Store, kind execution.Kind, cmd command.Command[O], cfg Config) command.Command[O] {
	return command.Chain(cmd,
		Identify[O](kind),
		PreventDuplicateExecutions[O](store),
		HandleBrokenExecutions[O](store, cfg.MaxInactiveTime),
		TrackExecution[O](store, cfg.trackOptions()...),
	)
}

// Background assembles the standard fire-and-forget stack. Identity,
// duplicate prevention, and cleanup run synchronously so the caller still
// gets an immediate duplicate error; tracking runs inside the detached
// chain so the record follows the real work. The returned command yields
// the execution id for later lookup.
//
// Tracking must sit inside the detachment. Placed outside, it would
// complete the record the moment the id is returned, while the real work
// has barely started.
func Background[O any](runner *async.Runner, store execution.Store, kind execution.Kind, cmd command.Command[O]) command.Command[uuid.UUID] {
	return BackgroundFromConfig(runner, store, kind, cmd, Config{})
}

// BackgroundFromConfig is Background with explicit timings. Zero fields
// fall back to the package defaults.
func BackgroundFromConfig[O any](runner *async.Runner, store execution.Store, kind execution.Kind, cmd command.Command[O], cfg Config) command.Command[uuid.UUID] {
	tracked := command.Chain(cmd, TrackExecution[O](store, cfg.trackOptions()...))

	return command.Chain(
		ExecuteInBackground(runner, tracked),
		Identify[uuid.UUID](kind),
		PreventDuplicateExecutions[uuid.UUID](store),
		HandleBrokenExecutions[uuid.UUID](store, cfg.MaxInactiveTime),
	)
}
