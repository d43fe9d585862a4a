// Package execution defines the persisted model of command executions and
// the store contract the tracking-related command layers share.
//
// One Execution record is written per attempted execution. Its lifecycle
// is strictly monotonic: created as in_progress, optionally refreshed by
// heartbeats, and completed exactly once as succeeded or failed. Terminal
// transitions are guarded in every Store implementation, so repeating a
// Succeed or Fail call on an already-completed record has no effect.
//
// # Store implementations
//
// MemoryStore (this package) backs tests and local development. Durable
// backends live under integration/database: pg stores records in a
// PostgreSQL table with a partial unique index closing the
// duplicate-start race, and mongo stores them as documents with an
// equivalent partial index. All implementations return the same sentinel
// errors (ErrNotFound, ErrAlreadyExists, ErrKindInProgress) so callers
// can branch with errors.Is regardless of backend.
//
// # Output decoding
//
// Command output is persisted as a schemaless document; its real shape is
// known only to the consumer and is keyed by the execution's Kind. The
// OutputDecoder registry performs that kind-discriminated decoding and
// validates at construction time that every kind of the closed catalogue
// has a decoder, turning a forgotten decoder into a startup error instead
// of a runtime surprise:
//
//	decoder, err := execution.NewOutputDecoder(map[execution.Kind]execution.DecodeOutputFunc{
//	    KindNodeVersion: execution.DecodeAs[string](),
//	    KindPauseNode:   execution.DecodeAs[PauseResult](),
//	}, KindNodeVersion, KindPauseNode)
//	if err != nil {
//	    log.Fatal(err) // catalogue drift
//	}
//
//	exec, _ := store.Get(ctx, id)
//	out, err := decoder.Decode(exec.Kind, exec.CommandOutput)
package execution
