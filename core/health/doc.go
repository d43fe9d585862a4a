// Package health aggregates dependency probes for liveness and
// readiness reporting.
//
// A Probe is any func(context.Context) error; the database integrations
// expose their health checks in this shape. Readiness combines several
// probes into one that a host process can poll or expose however it
// serves its operational endpoints:
//
//	ready := health.Readiness(log,
//	    pg.Healthcheck(pool),
//	    mongo.Healthcheck(client),
//	)
//
//	if err := ready(ctx); err != nil {
//	    // report 503, delay startup, etc.
//	}
//
// Liveness never checks dependencies; it only confirms the process is
// able to answer.
package health
