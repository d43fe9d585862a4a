package extensions

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/opsman/core/command"
	"github.com/dmitrymomot/opsman/core/execution"
)

// Identify mints a fresh execution id for every execution attempt and
// attaches it, together with the command kind, to the context. Every
// other tracking-related layer reads that identity, so Identify must sit
// above them in the stack.
//
// Identify itself never fails and has no behavior beyond the context
// projection.
func Identify[O any](kind execution.Kind) command.Layer[O] {
	return func(next command.Command[O]) command.Command[O] {
		return command.Func[O](func(ctx context.Context) (O, error) {
			ctx = WithExecutionID(ctx, uuid.New())
			ctx = WithCommandKind(ctx, kind)
			return next.Execute(ctx)
		})
	}
}
