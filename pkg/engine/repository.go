package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// WorkflowLoader loads a workflow with its graph for execution. A
// workflow that does not exist and a workflow owned by another user
// produce the same models.ErrNotAuthorized.
type WorkflowLoader interface {
	LoadWorkflowForExecution(ctx context.Context, workflowID, userID uuid.UUID) (*models.Workflow, []*models.Node, []*models.Edge, error)
}

// RunRepository persists workflow runs and node executions. Creates
// write status=running records; Finalize transitions them exactly once
// to a terminal state.
type RunRepository interface {
	CreateRun(ctx context.Context, workflowID, userID uuid.UUID, input map[string]interface{}) (uuid.UUID, error)
	FinalizeRun(ctx context.Context, runID uuid.UUID, status models.RunStatus, output map[string]interface{}, errMsg string) error
	CreateNodeExecution(ctx context.Context, runID, nodeID uuid.UUID, order int) (uuid.UUID, error)
	FinalizeNodeExecution(ctx context.Context, nodeExecID uuid.UUID, status models.RunStatus, output map[string]interface{}, errMsg string) error
}

// Metrics observes run and node outcomes. Implementations must be safe
// for concurrent use; a nil Metrics disables observation.
type Metrics interface {
	RunStarted(workflowID uuid.UUID)
	RunFinished(workflowID uuid.UUID, status models.RunStatus, durationSeconds float64)
	NodeFinished(nodeType models.NodeType, status models.RunStatus, durationSeconds float64)
}
