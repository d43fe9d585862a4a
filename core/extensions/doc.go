// Package extensions provides the standard cross-cutting layers for
// administrative commands: identity, duplicate prevention, stale-record
// cleanup, background detachment, and lifecycle tracking.
//
// All layers are generic over the command's output type and compose with
// command.Chain, so the first layer listed observes execution first:
//
//	cmd := command.Chain(pauseNode,
//	    extensions.Identify[bool]("pause_node"),
//	    extensions.PreventDuplicateExecutions[bool](store),
//	    extensions.HandleBrokenExecutions[bool](store, 0),
//	    extensions.TrackExecution[bool](store),
//	)
//	paused, err := cmd.Execute(ctx)
//
// Identify must sit above every other layer in this package: it mints the
// execution id and attaches it with the command kind to the context, and
// the remaining layers fail with ErrMissingIdentity when that identity is
// absent.
//
// The Foreground and Background helpers assemble the stacks above in the
// correct order, so most callers never chain the layers by hand.
// Background requires an *async.Runner and returns the execution id
// instead of the command output; the outcome is observed through the
// execution store.
package extensions
