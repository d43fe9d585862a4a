package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/opsman/pkg/async"
)

type ctxKey struct{}

func TestRunnerGo(t *testing.T) {
	t.Parallel()

	t.Run("runs the task to completion", func(t *testing.T) {
		t.Parallel()

		runner := async.NewRunner()
		done := make(chan struct{})

		err := runner.Go(context.Background(), func(ctx context.Context) error {
			close(done)
			return nil
		})
		require.NoError(t, err)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task never ran")
		}
		require.NoError(t, runner.Shutdown(context.Background()))
	})

	t.Run("keeps caller values, drops caller cancellation", func(t *testing.T) {
		t.Parallel()

		runner := async.NewRunner()
		callerCtx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "carried"))

		type observation struct {
			value    any
			canceled bool
		}
		observed := make(chan observation, 1)

		err := runner.Go(callerCtx, func(ctx context.Context) error {
			cancel()
			time.Sleep(10 * time.Millisecond)
			observed <- observation{
				value:    ctx.Value(ctxKey{}),
				canceled: ctx.Err() != nil,
			}
			return nil
		})
		require.NoError(t, err)

		obs := <-observed
		assert.Equal(t, "carried", obs.value)
		assert.False(t, obs.canceled, "caller cancellation must not reach the task")
		require.NoError(t, runner.Shutdown(context.Background()))
	})

	t.Run("recovers task panics", func(t *testing.T) {
		t.Parallel()

		runner := async.NewRunner()

		err := runner.Go(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
		require.NoError(t, err)

		assert.NoError(t, runner.Shutdown(context.Background()), "panicked task must still be accounted for")
	})

	t.Run("rejects work after shutdown", func(t *testing.T) {
		t.Parallel()

		runner := async.NewRunner()
		require.NoError(t, runner.Shutdown(context.Background()))

		err := runner.Go(context.Background(), func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, async.ErrRunnerClosed)
	})
}

func TestRunnerShutdown(t *testing.T) {
	t.Parallel()

	t.Run("waits for in-flight tasks", func(t *testing.T) {
		t.Parallel()

		runner := async.NewRunner()
		finished := false

		require.NoError(t, runner.Go(context.Background(), func(ctx context.Context) error {
			time.Sleep(30 * time.Millisecond)
			finished = true
			return nil
		}))

		require.NoError(t, runner.Shutdown(context.Background()))
		assert.True(t, finished)
	})

	t.Run("cancels stragglers past the deadline", func(t *testing.T) {
		t.Parallel()

		runner := async.NewRunner()
		taskCanceled := make(chan struct{})

		require.NoError(t, runner.Go(context.Background(), func(ctx context.Context) error {
			<-ctx.Done()
			close(taskCanceled)
			return ctx.Err()
		}))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := runner.Shutdown(shutdownCtx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		select {
		case <-taskCanceled:
		case <-time.After(time.Second):
			t.Fatal("straggler was never canceled")
		}
	})

	t.Run("tolerates a failing task", func(t *testing.T) {
		t.Parallel()

		runner := async.NewRunner()
		require.NoError(t, runner.Go(context.Background(), func(ctx context.Context) error {
			return errors.New("task failed")
		}))

		assert.NoError(t, runner.Shutdown(context.Background()))
	})
}
