package extensions

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/opsman/core/command"
	"github.com/dmitrymomot/opsman/core/execution"
)

// PreventDuplicateExecutions fails an execution attempt early when another
// execution of the same kind is still in progress, without invoking the
// wrapped chain. The check is a point-in-time read, so two attempts racing
// past it can both proceed; the store's one-in-progress-per-kind
// constraint catches that at record creation. Requires Identify above it.
func PreventDuplicateExecutions[O any](store execution.Store) command.Layer[O] {
	return func(next command.Command[O]) command.Command[O] {
		return command.Func[O](func(ctx context.Context) (O, error) {
			var zero O

			_, kind, err := identity(ctx)
			if err != nil {
				return zero, fmt.Errorf("prevent duplicate executions: %w", err)
			}

			inProgress, err := store.AnyInProgress(ctx, kind)
			if err != nil {
				return zero, fmt.Errorf("prevent duplicate executions: %w", err)
			}
			if inProgress {
				return zero, fmt.Errorf("kind %q: %w", kind, execution.ErrKindInProgress)
			}

			return next.Execute(ctx)
		})
	}
}
