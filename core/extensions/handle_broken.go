package extensions

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/opsman/core/command"
	"github.com/dmitrymomot/opsman/core/execution"
)

// DefaultMaxInactiveTime is how long an in-progress execution may go
// without a heartbeat before the sweep reclassifies it as failed.
const DefaultMaxInactiveTime = 5 * time.Minute

// HandleBrokenExecutions sweeps stale in-progress records of the command's
// kind before the wrapped chain runs. An execution whose last activity is
// older than maxInactive is reclassified as failed with the fixed
// staleness diagnostic, which unblocks PreventDuplicateExecutions after a
// crashed run left its record behind.
//
// The sweep is opportunistic cleanup piggybacking on execution attempts,
// not a liveness mechanism. Pass maxInactive <= 0 to use
// DefaultMaxInactiveTime. Requires Identify above it.
func HandleBrokenExecutions[O any](store execution.Store, maxInactive time.Duration) command.Layer[O] {
	if maxInactive <= 0 {
		maxInactive = DefaultMaxInactiveTime
	}

	return func(next command.Command[O]) command.Command[O] {
		return command.Func[O](func(ctx context.Context) (O, error) {
			var zero O

			_, kind, err := identity(ctx)
			if err != nil {
				return zero, fmt.Errorf("handle broken executions: %w", err)
			}

			if _, err := store.FailStale(ctx, kind, maxInactive); err != nil {
				return zero, fmt.Errorf("handle broken executions: %w", err)
			}

			return next.Execute(ctx)
		})
	}
}
