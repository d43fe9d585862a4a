package extensions

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/opsman/core/execution"
)

type executionIDCtx struct{}

// WithExecutionID attaches the execution id to the context so inner layers
// can correlate store writes with the record Identify minted.
func WithExecutionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, executionIDCtx{}, id)
}

// ExecutionIDFromContext extracts the execution id from the context.
// Returns uuid.Nil if not present.
func ExecutionIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(executionIDCtx{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

type commandKindCtx struct{}

// WithCommandKind attaches the command kind to the context.
func WithCommandKind(ctx context.Context, kind execution.Kind) context.Context {
	return context.WithValue(ctx, commandKindCtx{}, kind)
}

// CommandKindFromContext extracts the command kind from the context.
// Returns the empty kind if not present.
func CommandKindFromContext(ctx context.Context) execution.Kind {
	if kind, ok := ctx.Value(commandKindCtx{}).(execution.Kind); ok {
		return kind
	}
	return ""
}

// identity reads both projections and reports whether the layer runs
// under Identify.
func identity(ctx context.Context) (uuid.UUID, execution.Kind, error) {
	id := ExecutionIDFromContext(ctx)
	kind := CommandKindFromContext(ctx)
	if id == uuid.Nil || kind == "" {
		return uuid.Nil, "", ErrMissingIdentity
	}
	return id, kind, nil
}
