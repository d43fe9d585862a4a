package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/opsman/core/execution"
	"github.com/dmitrymomot/opsman/core/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	group := attr.Value.Group()
	require.Len(t, group, 2)
	assert.Equal(t, err1, group[0].Value.Any())
	assert.Equal(t, err2, group[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestExecutionAttrs(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	attr := logger.ExecutionID(id)
	require.Equal(t, "execution_id", attr.Key)
	assert.Equal(t, id.String(), attr.Value.String())
	assert.True(t, logger.ExecutionID(uuid.Nil).Equal(slog.Attr{}))

	attr = logger.Kind(execution.Kind("pause_node"))
	require.Equal(t, "kind", attr.Key)
	assert.Equal(t, "pause_node", attr.Value.String())
	assert.True(t, logger.Kind("").Equal(slog.Attr{}))

	attr = logger.Status(execution.StatusSucceeded)
	require.Equal(t, "status", attr.Key)
	assert.Equal(t, "succeeded", attr.Value.String())
}

func TestGroup(t *testing.T) {
	t.Parallel()

	attr := logger.Group("execution", slog.String("id", "1"), slog.Int("attempt", 2))
	require.Equal(t, "execution", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	assert.Len(t, attr.Value.Group(), 2)
}
