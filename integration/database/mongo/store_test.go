package mongo_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/opsman/core/execution"
	"github.com/dmitrymomot/opsman/integration/database/mongo"
)

// Requires a reachable MongoDB instance; set MONGODB_TEST_URL to run.
func setupStore(t *testing.T) *mongo.Store {
	t.Helper()

	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL is not set")
	}

	ctx := context.Background()
	cfg := mongo.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
		RetryAttempts:  1,
	}

	db, err := mongo.NewWithDatabase(ctx, cfg, "opsman_test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })

	store := mongo.NewStore(db)
	require.NoError(t, store.EnsureIndexes(ctx))

	return store
}

func TestStoreLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	kind := execution.Kind("mongo_lifecycle_" + uuid.NewString())

	id := uuid.New()
	require.NoError(t, store.Create(ctx, id, kind))

	inProgress, err := store.AnyInProgress(ctx, kind)
	require.NoError(t, err)
	assert.True(t, inProgress)

	require.NoError(t, store.Heartbeat(ctx, id))
	require.NoError(t, store.Succeed(ctx, id, json.RawMessage(`{"paused":true}`)))

	exec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusSucceeded, exec.Status)
	assert.JSONEq(t, `{"paused":true}`, string(exec.CommandOutput))
	assert.NotNil(t, exec.CompletedAt)

	// Terminal transitions are idempotent.
	require.NoError(t, store.Fail(ctx, id, "too late"))
	exec, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusSucceeded, exec.Status)
}

func TestStoreScalarOutputRoundtrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	kind := execution.Kind("mongo_scalar_" + uuid.NewString())

	id := uuid.New()
	require.NoError(t, store.Create(ctx, id, kind))
	require.NoError(t, store.Succeed(ctx, id, json.RawMessage(`"v0.0.1"`)))

	exec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `"v0.0.1"`, string(exec.CommandOutput))
}

func TestStoreKindConstraint(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	kind := execution.Kind("mongo_constraint_" + uuid.NewString())

	first := uuid.New()
	require.NoError(t, store.Create(ctx, first, kind))

	err := store.Create(ctx, uuid.New(), kind)
	assert.ErrorIs(t, err, execution.ErrKindInProgress)

	require.NoError(t, store.Fail(ctx, first, "done"))
	assert.NoError(t, store.Create(ctx, uuid.New(), kind))
}

func TestStoreFailStale(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	kind := execution.Kind("mongo_stale_" + uuid.NewString())

	id := uuid.New()
	require.NoError(t, store.Create(ctx, id, kind))
	time.Sleep(50 * time.Millisecond)

	swept, err := store.FailStale(ctx, kind, 10*time.Millisecond)
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	exec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusFailed, exec.Status)
	require.NotNil(t, exec.ErrorMessage)
	assert.Equal(t, execution.StaleExecutionMessage, *exec.ErrorMessage)
}

func TestStoreNotFound(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, execution.ErrNotFound)
	assert.ErrorIs(t, store.Heartbeat(ctx, uuid.New()), execution.ErrNotFound)
}
