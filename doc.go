// Package opsman provides an extensible execution framework for
// administrative commands: one-off operational actions such as pausing a
// subsystem, triggering a re-sync, or querying a node's version.
//
// The framework separates what a command does from the cross-cutting
// behaviors every command needs, and keeps composed behavior predictable:
// layers run in the order they are listed.
//
// # Package Organization
//
//   - core/command: the Command and Layer abstractions and the Chain
//     combinator that composes them with intuitive ordering.
//   - core/extensions: the standard layers (Identify,
//     PreventDuplicateExecutions, HandleBrokenExecutions,
//     ExecuteInBackground, TrackExecution) and the Foreground/Background
//     stack helpers.
//   - core/execution: the persisted execution record, the Store contract,
//     the in-memory store, and the per-kind output decoder registry.
//   - core/config: environment-based configuration loading.
//   - core/logger: slog attribute helpers.
//   - core/health: dependency probe aggregation.
//   - integration/database/pg: PostgreSQL connectivity, migrations, and
//     the durable execution store.
//   - integration/database/mongo: MongoDB connectivity and the document
//     flavor of the execution store.
//   - pkg/async: futures and the detached-work runner backing background
//     execution.
//
// # Getting Started
//
// Define a command, wrap it with the standard stack, execute it:
//
//	pause := command.Func[bool](func(ctx context.Context) (bool, error) {
//	    return svc.Pause(ctx)
//	})
//
//	cmd := extensions.Foreground(store, "pause_node", pause)
//	paused, err := cmd.Execute(ctx)
//
// For long-running commands, hand the work to a runner and observe the
// outcome through the store:
//
//	cmd := extensions.Background(runner, store, "reindex", reindex)
//	id, err := cmd.Execute(ctx)
//	// later: store.Get(ctx, id)
package opsman
