// Package command provides the primitives for composable administrative
// commands: a typed command contract and a layering mechanism that adds
// cross-cutting behavior in a predictable order.
//
// A command is any type implementing Command[O]: given a context, it
// produces a typed output or an error. Commands are deliberately unaware
// of identification, deduplication, persistence, or background execution;
// those concerns are attached as layers.
//
// # Layers and run order
//
// A Layer consumes a command and returns a new command with the original
// nested inside as the final step. Layers compose through Chain, which
// guarantees intuitive ordering: the n-th listed layer observes the call
// before the (n+1)-th, and the base command runs last. This holds for any
// chain depth and any mix of layers, so the behavior of a composed command
// can be read off the Chain call top to bottom:
//
//	cmd := command.Chain(restartNode,
//	    extensions.Identify[RestartOutput](kind),
//	    extensions.PreventDuplicateExecutions[RestartOutput](store),
//	    extensions.TrackExecution[RestartOutput](store),
//	)
//	out, err := cmd.Execute(ctx)
//
// # Context projections
//
// Layers frequently need to pass execution data inward (an execution id, a
// command kind) without widening the Command contract. The convention is
// the standard context-value pattern with unexported key types: a layer
// attaches data with a WithX helper and inner layers read it back with a
// typed XFromContext accessor, declaring exactly the projection they need.
// See the accessors in core/extensions for the projections used by the
// standard layers.
//
// # Errors
//
// Errors returned by the base command or by an inner layer propagate
// outward through every enclosing layer. Layers may wrap with %w for
// context but must not change what errors.Is reports for the underlying
// error. A layer that fails before invoking its wrapped command
// short-circuits the chain: the base command never runs.
package command
