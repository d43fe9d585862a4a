package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/opsman/core/execution"
)

// querier is the subset of pgxpool.Pool and pgx.Tx the store needs, so
// every operation can run against a caller's transaction when one is
// attached to the context.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists execution records in the command_executions table. The
// partial unique index on (kind) WHERE status = 'in_progress' enforces
// the one-in-progress-per-kind constraint at the database, so two
// processes racing past the duplicate check cannot both create a record.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store backed by the given pool. Run Migrate before
// first use.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// conn returns the caller's transaction when the context carries one,
// the pool otherwise.
func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

// Create inserts a new in-progress record.
func (s *Store) Create(ctx context.Context, id uuid.UUID, kind execution.Kind) error {
	const query = `
		INSERT INTO command_executions (id, kind, status, started_at)
		VALUES ($1, $2, $3, now())`

	_, err := s.conn(ctx).Exec(ctx, query, id, kind, execution.StatusInProgress)
	if err != nil {
		switch constraintName(err) {
		case "command_executions_pkey":
			return fmt.Errorf("execution %s: %w", id, execution.ErrAlreadyExists)
		case "command_executions_kind_in_progress_idx":
			return fmt.Errorf("kind %q: %w", kind, execution.ErrKindInProgress)
		}
		return fmt.Errorf("create execution: %w", err)
	}

	return nil
}

// Get returns the record for the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*execution.Execution, error) {
	const query = `
		SELECT id, kind, status, error_message, command_output, started_at, updated_at, completed_at
		FROM command_executions
		WHERE id = $1`

	var exec execution.Execution
	var output []byte
	err := s.conn(ctx).QueryRow(ctx, query, id).Scan(
		&exec.ID,
		&exec.Kind,
		&exec.Status,
		&exec.ErrorMessage,
		&output,
		&exec.StartedAt,
		&exec.UpdatedAt,
		&exec.CompletedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("execution %s: %w", id, execution.ErrNotFound)
		}
		return nil, fmt.Errorf("get execution: %w", err)
	}
	if output != nil {
		exec.CommandOutput = json.RawMessage(output)
	}

	return &exec, nil
}

// AnyInProgress reports whether any execution of the kind is in progress.
func (s *Store) AnyInProgress(ctx context.Context, kind execution.Kind) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM command_executions
			WHERE kind = $1 AND status = $2
		)`

	var inProgress bool
	if err := s.conn(ctx).QueryRow(ctx, query, kind, execution.StatusInProgress).Scan(&inProgress); err != nil {
		return false, fmt.Errorf("check in-progress executions: %w", err)
	}

	return inProgress, nil
}

// Heartbeat refreshes updated_at on a non-terminal record.
func (s *Store) Heartbeat(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE command_executions
		SET updated_at = now()
		WHERE id = $1 AND status = $2`

	tag, err := s.conn(ctx).Exec(ctx, query, id, execution.StatusInProgress)
	if err != nil {
		return fmt.Errorf("heartbeat execution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.requireExists(ctx, id)
	}

	return nil
}

// Succeed transitions a record to the succeeded status. A record already
// terminal is left untouched.
func (s *Store) Succeed(ctx context.Context, id uuid.UUID, output json.RawMessage) error {
	const query = `
		UPDATE command_executions
		SET status = $2, command_output = $3, completed_at = now()
		WHERE id = $1 AND status = $4`

	tag, err := s.conn(ctx).Exec(ctx, query, id, execution.StatusSucceeded, []byte(output), execution.StatusInProgress)
	if err != nil {
		return fmt.Errorf("record execution success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.requireExists(ctx, id)
	}

	return nil
}

// Fail transitions a record to the failed status. A record already
// terminal is left untouched.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	const query = `
		UPDATE command_executions
		SET status = $2, error_message = $3, completed_at = now()
		WHERE id = $1 AND status = $4`

	tag, err := s.conn(ctx).Exec(ctx, query, id, execution.StatusFailed, errorMessage, execution.StatusInProgress)
	if err != nil {
		return fmt.Errorf("record execution failure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.requireExists(ctx, id)
	}

	return nil
}

// FailStale reclassifies inactive in-progress executions of the kind as
// failed with the fixed staleness diagnostic.
func (s *Store) FailStale(ctx context.Context, kind execution.Kind, maxInactive time.Duration) (int64, error) {
	const query = `
		UPDATE command_executions
		SET status = $3, error_message = $4, completed_at = now()
		WHERE kind = $1
		  AND status = $2
		  AND COALESCE(updated_at, started_at) < $5`

	cutoff := time.Now().Add(-maxInactive)
	tag, err := s.conn(ctx).Exec(ctx, query,
		kind,
		execution.StatusInProgress,
		execution.StatusFailed,
		execution.StaleExecutionMessage,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale executions: %w", err)
	}

	return tag.RowsAffected(), nil
}

// requireExists distinguishes "record gone" from "record already
// terminal" after a zero-row guarded update.
func (s *Store) requireExists(ctx context.Context, id uuid.UUID) error {
	const query = `SELECT EXISTS (SELECT 1 FROM command_executions WHERE id = $1)`

	var exists bool
	if err := s.conn(ctx).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("check execution existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("execution %s: %w", id, execution.ErrNotFound)
	}

	return nil
}
