// Package mongo provides MongoDB client initialization and the document
// flavor of the durable execution store.
//
// The client wraps the official driver with retry logic on connect,
// tuned for managed deployments where cold starts and brief network
// interruptions during boot are routine.
//
// Basic usage:
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "opsman")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := mongo.NewStore(db)
//	if err := store.EnsureIndexes(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Store semantics
//
// Execution documents live in the command_executions collection. A
// partial unique index on kind where status is in_progress makes Create
// the authoritative duplicate guard, matching the PostgreSQL store.
// Command output is stored as a native BSON document and converted back
// to JSON on read, so consumers see the same json.RawMessage regardless
// of backend.
//
// # Health checking
//
// Healthcheck returns a probe function for readiness endpoints:
//
//	check := mongo.Healthcheck(client)
//	if err := check(ctx); err != nil {
//	    // report unhealthy
//	}
package mongo
