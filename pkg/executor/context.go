package executor

import (
	"context"

	"github.com/google/uuid"
)

// ExecutionInfo identifies the run a handler invocation belongs to.
// The engine attaches it to the context before dispatch; handlers that
// need run identity (user scoping, logging) read it back with
// FromContext.
type ExecutionInfo struct {
	RunID      uuid.UUID
	WorkflowID uuid.UUID
	UserID     uuid.UUID
	NodeID     uuid.UUID
	NodeName   string
}

type executionInfoKey struct{}

// NewContext returns a context carrying the given execution info.
func NewContext(ctx context.Context, info ExecutionInfo) context.Context {
	return context.WithValue(ctx, executionInfoKey{}, info)
}

// FromContext extracts execution info from the context.
func FromContext(ctx context.Context) (ExecutionInfo, bool) {
	info, ok := ctx.Value(executionInfoKey{}).(ExecutionInfo)
	return info, ok
}
