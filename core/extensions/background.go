package extensions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/opsman/core/command"
	"github.com/dmitrymomot/opsman/pkg/async"
)

// ExecuteInBackground detaches the inner chain onto the runner and
// returns the execution id immediately, before the real work completes.
// The caller observes the outcome through the execution store, so the
// inner chain must contain TrackExecution.
//
// This is deliberately not a Layer: it changes the output type from O to
// uuid.UUID, and it demands an *async.Runner, which only a long-lived
// host process owns. A one-shot CLI path has no runner to hand over and
// therefore cannot compose this in by accident.
//
// The detached chain keeps the caller's context values, so identity
// attached by Identify survives the handoff; the caller's cancellation
// does not propagate. Requires Identify above it.
func ExecuteInBackground[O any](runner *async.Runner, inner command.Command[O]) command.Command[uuid.UUID] {
	return command.Func[uuid.UUID](func(ctx context.Context) (uuid.UUID, error) {
		id, _, err := identity(ctx)
		if err != nil {
			return uuid.Nil, fmt.Errorf("execute in background: %w", err)
		}

		err = runner.Go(ctx, func(runCtx context.Context) error {
			_, err := inner.Execute(runCtx)
			return err
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("execute in background: %w", err)
		}

		return id, nil
	})
}
