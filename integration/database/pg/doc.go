// Package pg provides PostgreSQL connection management and the durable
// execution store.
//
// It wraps the pgx driver with retry logic on connect, goose-based schema
// migrations, and a health check probe, and implements execution.Store on
// top of the command_executions table.
//
// # Configuration
//
// All settings come from the environment via the Config struct:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, logger); err != nil {
//	    log.Fatal(err)
//	}
//
//	store := pg.NewStore(pool)
//
// Connection establishment retries with a linear backoff, so services
// restarting together with the database do not fail their boot on the
// first refused connection.
//
// # Store semantics
//
// The command_executions table carries check constraints mirroring the
// record invariants (terminal iff completed, output and error mutually
// exclusive) and a partial unique index on (kind) WHERE status =
// 'in_progress'. The index makes Create the authoritative duplicate
// guard: of two processes racing to start the same kind, exactly one
// insert succeeds and the other receives execution.ErrKindInProgress.
//
// Store operations participate in a caller transaction when one is
// attached with WithTx:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback(ctx) // Safe even after commit
//
//	ctx = pg.WithTx(ctx, tx)
//	if err := store.Create(ctx, id, kind); err != nil {
//	    return err
//	}
//	// Further writes in the same transaction...
//	return tx.Commit(ctx)
//
// # Health checking
//
// Healthcheck returns a probe function suitable for readiness endpoints:
//
//	check := pg.Healthcheck(pool)
//	if err := check(ctx); err != nil {
//	    // report unhealthy
//	}
//
// # Error handling
//
// Beyond the package sentinels, the classification helpers
// (IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError,
// IsTxClosedError) let callers branch on common PostgreSQL failure
// patterns without inspecting driver internals.
package pg
