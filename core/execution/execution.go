package execution

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which command type an execution belongs to. The set of
// kinds is a closed catalogue owned by the consumer: the same tags are
// used for store lookups and for decoding stored command output.
type Kind string

// Status tracks the lifecycle state of a command execution.
// It starts as in progress and moves exactly once into a terminal state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final. Terminal states are
// never revisited.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// StaleExecutionMessage is the fixed diagnostic recorded when a stale
// in-progress execution is reclassified as failed by the staleness sweep.
const StaleExecutionMessage = "timeout"

// Execution is the persisted record of one command execution attempt.
//
// Field invariants:
//   - Status is terminal iff CompletedAt is set.
//   - CommandOutput is set only when Status is succeeded; ErrorMessage only
//     when Status is failed. Never both.
//   - UpdatedAt, when set, is >= StartedAt; CompletedAt, when set, is >= the
//     latest of StartedAt and UpdatedAt.
type Execution struct {
	ID            uuid.UUID       `json:"id"`
	Kind          Kind            `json:"kind"`
	Status        Status          `json:"status"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CommandOutput json.RawMessage `json:"command_output,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// LastActivityAt returns the most recent progress signal: UpdatedAt when
// present, otherwise StartedAt. The staleness sweep compares this against
// the inactivity threshold.
func (e *Execution) LastActivityAt() time.Time {
	if e.UpdatedAt != nil {
		return *e.UpdatedAt
	}
	return e.StartedAt
}
