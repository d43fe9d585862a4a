package execution

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract shared by the tracking-related command
// layers. Implementations must be safe for concurrent use across
// executions of different kinds; concurrent mutation of the same id is not
// expected since an id is minted once per execution attempt.
type Store interface {
	// Create inserts a new in-progress record with StartedAt set to now.
	// Returns ErrAlreadyExists if the id was used before, and
	// ErrKindInProgress if another execution of the same kind is still in
	// progress (the store-level backstop for the duplicate check).
	Create(ctx context.Context, id uuid.UUID, kind Kind) error

	// Get returns the record for the given id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Execution, error)

	// AnyInProgress reports whether any execution of the given kind is
	// currently in progress.
	AnyInProgress(ctx context.Context, kind Kind) (bool, error)

	// Heartbeat refreshes UpdatedAt on a non-terminal record to signal
	// that the execution is still alive. Calling it on a terminal record
	// is a no-op.
	Heartbeat(ctx context.Context, id uuid.UUID) error

	// Succeed transitions a record to the succeeded status, attaching the
	// serialized command output and setting CompletedAt. Calling it on an
	// already-terminal record is a no-op.
	Succeed(ctx context.Context, id uuid.UUID, output json.RawMessage) error

	// Fail transitions a record to the failed status, attaching the error
	// message and setting CompletedAt. Calling it on an already-terminal
	// record is a no-op.
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error

	// FailStale marks in-progress executions of the given kind as failed
	// with StaleExecutionMessage when their last activity is older than
	// maxInactive. Returns the number of records reclassified.
	FailStale(ctx context.Context, kind Kind, maxInactive time.Duration) (int64, error)
}
