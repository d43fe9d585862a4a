// Package logger provides slog attribute helpers for consistent
// structured logging across the module.
//
// Helpers return an empty slog.Attr for nil or zero inputs, so they can
// be passed unconditionally:
//
//	log.Error("execution failed",
//	    logger.Error(err),
//	    logger.ExecutionID(id),
//	    logger.Kind(kind),
//	)
//
// Beyond the generic helpers (Error, Errors, Group, Duration, Elapsed,
// Component), the package carries domain attributes for execution
// records: ExecutionID, Kind, and Status, keeping the attribute keys
// identical across every component that logs about an execution.
package logger
