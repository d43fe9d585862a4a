package command

import "context"

// Command is a unit of administrative work that produces a typed output
// or an error. Implementations are expected to honor context cancellation
// for any blocking work they perform.
//
// The same contract is satisfied by base commands and by every wrapped
// command a Layer produces, which is what allows cross-cutting behavior
// to be stacked without the command knowing about it.
type Command[O any] interface {
	Execute(ctx context.Context) (O, error)
}

// Func adapts a plain function to the Command interface.
//
// Example:
//
//	version := command.Func[string](func(ctx context.Context) (string, error) {
//	    return "v0.0.1", nil
//	})
type Func[O any] func(ctx context.Context) (O, error)

// Execute calls f.
func (f Func[O]) Execute(ctx context.Context) (O, error) {
	return f(ctx)
}
