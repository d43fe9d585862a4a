package extensions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/opsman/core/command"
	"github.com/dmitrymomot/opsman/core/execution"
	"github.com/dmitrymomot/opsman/core/extensions"
)

const pauseKind execution.Kind = "pause_node"

func TestIdentify(t *testing.T) {
	t.Parallel()

	t.Run("attaches id and kind to the context", func(t *testing.T) {
		t.Parallel()

		var seenID uuid.UUID
		var seenKind execution.Kind
		base := command.Func[string](func(ctx context.Context) (string, error) {
			seenID = extensions.ExecutionIDFromContext(ctx)
			seenKind = extensions.CommandKindFromContext(ctx)
			return "v0.0.1", nil
		})

		cmd := command.Chain[string](base, extensions.Identify[string](pauseKind))

		out, err := cmd.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "v0.0.1", out)
		assert.NotEqual(t, uuid.Nil, seenID)
		assert.Equal(t, pauseKind, seenKind)
	})

	t.Run("mints a fresh id per execution attempt", func(t *testing.T) {
		t.Parallel()

		ids := make(map[uuid.UUID]struct{})
		base := command.Func[string](func(ctx context.Context) (string, error) {
			ids[extensions.ExecutionIDFromContext(ctx)] = struct{}{}
			return "", nil
		})

		cmd := command.Chain[string](base, extensions.Identify[string](pauseKind))
		for range 3 {
			_, err := cmd.Execute(context.Background())
			require.NoError(t, err)
		}

		assert.Len(t, ids, 3)
	})
}

func TestPreventDuplicateExecutions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("passes through when no execution is in progress", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) { return "ok", nil }),
			extensions.Identify[string](pauseKind),
			extensions.PreventDuplicateExecutions[string](store),
		)

		out, err := cmd.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	})

	t.Run("blocks while an execution of the kind is in progress", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		require.NoError(t, store.Create(ctx, uuid.New(), pauseKind))

		invoked := false
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) {
				invoked = true
				return "ok", nil
			}),
			extensions.Identify[string](pauseKind),
			extensions.PreventDuplicateExecutions[string](store),
		)

		_, err := cmd.Execute(ctx)
		assert.ErrorIs(t, err, execution.ErrKindInProgress)
		assert.False(t, invoked, "wrapped chain must not run on a duplicate")
	})

	t.Run("fails without identity", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) { return "ok", nil }),
			extensions.PreventDuplicateExecutions[string](store),
		)

		_, err := cmd.Execute(ctx)
		assert.ErrorIs(t, err, extensions.ErrMissingIdentity)
	})
}

func TestHandleBrokenExecutions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sweeps stale records before the chain runs", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		stale := uuid.New()
		require.NoError(t, store.Create(ctx, stale, pauseKind))
		time.Sleep(20 * time.Millisecond)

		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) { return "ok", nil }),
			extensions.Identify[string](pauseKind),
			extensions.HandleBrokenExecutions[string](store, 10*time.Millisecond),
		)

		out, err := cmd.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", out)

		exec, err := store.Get(ctx, stale)
		require.NoError(t, err)
		assert.Equal(t, execution.StatusFailed, exec.Status)
		require.NotNil(t, exec.ErrorMessage)
		assert.Equal(t, execution.StaleExecutionMessage, *exec.ErrorMessage)
	})

	t.Run("unblocks a new attempt after a crash left a record behind", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		require.NoError(t, store.Create(ctx, uuid.New(), pauseKind))
		time.Sleep(20 * time.Millisecond)

		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) { return "ok", nil }),
			extensions.Identify[string](pauseKind),
			extensions.HandleBrokenExecutions[string](store, 10*time.Millisecond),
			extensions.PreventDuplicateExecutions[string](store),
		)

		// With the sweep listed first the stale record is gone by the time
		// the duplicate check runs. Reversed, the attempt would be blocked
		// by a record belonging to a dead process.
		_, err := cmd.Execute(ctx)
		assert.NoError(t, err)
	})

	t.Run("fails without identity", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) { return "ok", nil }),
			extensions.HandleBrokenExecutions[string](store, 0),
		)

		_, err := cmd.Execute(ctx)
		assert.ErrorIs(t, err, extensions.ErrMissingIdentity)
	})
}

func TestTrackExecution(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("persists success with encoded output", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		var id uuid.UUID
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) {
				id = extensions.ExecutionIDFromContext(ctx)
				return "v0.0.1", nil
			}),
			extensions.Identify[string](pauseKind),
			extensions.TrackExecution[string](store),
		)

		out, err := cmd.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, "v0.0.1", out)

		exec, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, execution.StatusSucceeded, exec.Status)
		assert.JSONEq(t, `"v0.0.1"`, string(exec.CommandOutput))
	})

	t.Run("persists failure and propagates the command error unchanged", func(t *testing.T) {
		t.Parallel()

		errPause := errors.New("node unreachable")
		store := execution.NewMemoryStore()
		var id uuid.UUID
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) {
				id = extensions.ExecutionIDFromContext(ctx)
				return "", errPause
			}),
			extensions.Identify[string](pauseKind),
			extensions.TrackExecution[string](store),
		)

		_, err := cmd.Execute(ctx)
		assert.ErrorIs(t, err, errPause)

		exec, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, execution.StatusFailed, exec.Status)
		require.NotNil(t, exec.ErrorMessage)
		assert.Equal(t, "node unreachable", *exec.ErrorMessage)
	})

	t.Run("marks the record failed when output cannot be encoded", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		var id uuid.UUID
		cmd := command.Chain[chan int](
			command.Func[chan int](func(ctx context.Context) (chan int, error) {
				id = extensions.ExecutionIDFromContext(ctx)
				return make(chan int), nil
			}),
			extensions.Identify[chan int](pauseKind),
			extensions.TrackExecution[chan int](store),
		)

		_, err := cmd.Execute(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encode command output")

		exec, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, execution.StatusFailed, exec.Status)
	})

	t.Run("heartbeats while the chain runs", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		var id uuid.UUID
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) {
				id = extensions.ExecutionIDFromContext(ctx)
				time.Sleep(60 * time.Millisecond)
				return "done", nil
			}),
			extensions.Identify[string](pauseKind),
			extensions.TrackExecution[string](store, extensions.WithHeartbeatInterval(10*time.Millisecond)),
		)

		_, err := cmd.Execute(ctx)
		require.NoError(t, err)

		exec, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, exec.UpdatedAt, "at least one heartbeat must have landed")
	})

	t.Run("abandons the chain past max execution time", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		var id uuid.UUID
		canceled := make(chan struct{})
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) {
				id = extensions.ExecutionIDFromContext(ctx)
				<-ctx.Done()
				close(canceled)
				return "", ctx.Err()
			}),
			extensions.Identify[string](pauseKind),
			extensions.TrackExecution[string](store, extensions.WithMaxExecutionTime(20*time.Millisecond)),
		)

		_, err := cmd.Execute(ctx)
		assert.ErrorIs(t, err, extensions.ErrExecutionTimeout)

		select {
		case <-canceled:
		case <-time.After(time.Second):
			t.Fatal("abandoned chain was never canceled")
		}

		exec, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, execution.StatusFailed, exec.Status)
		require.NotNil(t, exec.ErrorMessage)
		assert.Equal(t, execution.StaleExecutionMessage, *exec.ErrorMessage)
	})

	t.Run("fails without identity", func(t *testing.T) {
		t.Parallel()

		store := execution.NewMemoryStore()
		cmd := command.Chain[string](
			command.Func[string](func(ctx context.Context) (string, error) { return "ok", nil }),
			extensions.TrackExecution[string](store),
		)

		_, err := cmd.Execute(ctx)
		assert.ErrorIs(t, err, extensions.ErrMissingIdentity)
		assert.Zero(t, store.Len(), "no record without identity")
	})
}
