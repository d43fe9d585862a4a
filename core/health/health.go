package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/opsman/core/logger"
)

// ErrNotReady is returned when a readiness probe fails.
var ErrNotReady = errors.New("service is not ready")

// Probe verifies one dependency. Implementations are expected to be
// cheap enough for frequent polling.
type Probe func(context.Context) error

// Liveness reports that the process is running. No dependency checks.
func Liveness() Probe {
	return func(context.Context) error { return nil }
}

// Readiness aggregates dependency probes into one. The combined probe
// fails on the first failing dependency, logging the cause, and succeeds
// only when every dependency does.
//
// Example:
//
//	ready := health.Readiness(log,
//	    pg.Healthcheck(pool),
//	    mongo.Healthcheck(client),
//	)
func Readiness(log *slog.Logger, probes ...Probe) Probe {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(ctx context.Context) error {
		for _, probe := range probes {
			if err := probe(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				return fmt.Errorf("%w: %v", ErrNotReady, err)
			}
		}
		return nil
	}
}
