package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with mutex-guarded in-memory state for
// testing and local development. It enforces the same one-in-progress-per-
// kind constraint that the database-backed stores enforce with a partial
// unique index, so behavior under concurrent starts matches production.
type MemoryStore struct {
	mu         sync.RWMutex
	executions map[uuid.UUID]*Execution
	byKind     map[Kind][]uuid.UUID
}

// NewMemoryStore creates an empty in-memory execution store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		executions: make(map[uuid.UUID]*Execution),
		byKind:     make(map[Kind][]uuid.UUID),
	}
}

// Create inserts a new in-progress record.
func (ms *MemoryStore) Create(ctx context.Context, id uuid.UUID, kind Kind) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.executions[id]; exists {
		return fmt.Errorf("execution %s: %w", id, ErrAlreadyExists)
	}

	for _, otherID := range ms.byKind[kind] {
		if ms.executions[otherID].Status == StatusInProgress {
			return fmt.Errorf("kind %q: %w", kind, ErrKindInProgress)
		}
	}

	ms.executions[id] = &Execution{
		ID:        id,
		Kind:      kind,
		Status:    StatusInProgress,
		StartedAt: time.Now(),
	}
	ms.byKind[kind] = append(ms.byKind[kind], id)

	return nil
}

// Get returns a copy of the record for the given id.
func (ms *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Execution, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	exec, exists := ms.executions[id]
	if !exists {
		return nil, fmt.Errorf("execution %s: %w", id, ErrNotFound)
	}

	execCopy := *exec
	return &execCopy, nil
}

// AnyInProgress reports whether any execution of the kind is in progress.
func (ms *MemoryStore) AnyInProgress(ctx context.Context, kind Kind) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, id := range ms.byKind[kind] {
		if ms.executions[id].Status == StatusInProgress {
			return true, nil
		}
	}

	return false, nil
}

// Heartbeat refreshes UpdatedAt on a non-terminal record.
func (ms *MemoryStore) Heartbeat(ctx context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	exec, exists := ms.executions[id]
	if !exists {
		return fmt.Errorf("execution %s: %w", id, ErrNotFound)
	}
	if exec.Status.Terminal() {
		return nil
	}

	now := time.Now()
	exec.UpdatedAt = &now

	return nil
}

// Succeed transitions a record to the succeeded status.
func (ms *MemoryStore) Succeed(ctx context.Context, id uuid.UUID, output json.RawMessage) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	exec, exists := ms.executions[id]
	if !exists {
		return fmt.Errorf("execution %s: %w", id, ErrNotFound)
	}
	if exec.Status.Terminal() {
		return nil
	}

	now := time.Now()
	exec.Status = StatusSucceeded
	exec.CommandOutput = slices.Clone(output)
	exec.CompletedAt = &now

	return nil
}

// Fail transitions a record to the failed status.
func (ms *MemoryStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	exec, exists := ms.executions[id]
	if !exists {
		return fmt.Errorf("execution %s: %w", id, ErrNotFound)
	}
	if exec.Status.Terminal() {
		return nil
	}

	now := time.Now()
	exec.Status = StatusFailed
	exec.ErrorMessage = &errorMessage
	exec.CompletedAt = &now

	return nil
}

// FailStale reclassifies inactive in-progress executions of the kind as
// failed with the fixed staleness diagnostic.
func (ms *MemoryStore) FailStale(ctx context.Context, kind Kind, maxInactive time.Duration) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := time.Now().Add(-maxInactive)
	var swept int64

	for _, id := range ms.byKind[kind] {
		exec := ms.executions[id]
		if exec.Status != StatusInProgress {
			continue
		}
		if !exec.LastActivityAt().Before(cutoff) {
			continue
		}

		now := time.Now()
		message := StaleExecutionMessage
		exec.Status = StatusFailed
		exec.ErrorMessage = &message
		exec.CompletedAt = &now
		swept++
	}

	return swept, nil
}

// Len returns the number of stored records. Intended for tests.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return len(ms.executions)
}
