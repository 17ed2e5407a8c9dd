package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/flowmesh/flowmesh/pkg/models"

	storagemodels "github.com/flowmesh/flowmesh/internal/infrastructure/storage/models"
)

// RunRepository persists workflow runs and node executions.
type RunRepository struct {
	db *bun.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *bun.DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun inserts a run record with status running.
func (r *RunRepository) CreateRun(ctx context.Context, workflowID, userID uuid.UUID, input map[string]interface{}) (uuid.UUID, error) {
	run := &storagemodels.WorkflowRunModel{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		UserID:     userID,
		Status:     string(models.RunStatusRunning),
		InputData:  storagemodels.JSONBMap(input),
		StartedAt:  time.Now(),
	}
	if _, err := r.db.NewInsert().Model(run).Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run.ID, nil
}

// FinalizeRun writes the run's terminal state. The status guard makes
// the transition single-shot: a run that already reached a terminal
// state is never overwritten.
func (r *RunRepository) FinalizeRun(ctx context.Context, runID uuid.UUID, status models.RunStatus, output map[string]interface{}, errMsg string) error {
	now := time.Now()
	res, err := r.db.NewUpdate().
		Model((*storagemodels.WorkflowRunModel)(nil)).
		Set("status = ?", string(status)).
		Set("output_data = ?", storagemodels.JSONBMap(output)).
		Set("error_message = ?", errMsg).
		Set("completed_at = ?", now).
		Where("id = ?", runID).
		Where("status = ?", string(models.RunStatusRunning)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("run %s is not running: %w", runID, models.ErrRunNotFound)
	}
	return nil
}

// CreateNodeExecution inserts a node execution record with status running.
func (r *RunRepository) CreateNodeExecution(ctx context.Context, runID, nodeID uuid.UUID, order int) (uuid.UUID, error) {
	nodeExec := &storagemodels.NodeExecutionModel{
		ID:             uuid.New(),
		RunID:          runID,
		NodeID:         nodeID,
		Status:         string(models.RunStatusRunning),
		ExecutionOrder: order,
		StartedAt:      time.Now(),
	}
	if _, err := r.db.NewInsert().Model(nodeExec).Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create node execution: %w", err)
	}
	return nodeExec.ID, nil
}

// FinalizeNodeExecution writes a node execution's terminal state.
func (r *RunRepository) FinalizeNodeExecution(ctx context.Context, nodeExecID uuid.UUID, status models.RunStatus, output map[string]interface{}, errMsg string) error {
	now := time.Now()
	res, err := r.db.NewUpdate().
		Model((*storagemodels.NodeExecutionModel)(nil)).
		Set("status = ?", string(status)).
		Set("output_data = ?", storagemodels.JSONBMap(output)).
		Set("error_message = ?", errMsg).
		Set("completed_at = ?", now).
		Where("id = ?", nodeExecID).
		Where("status = ?", string(models.RunStatusRunning)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to finalize node execution: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("node execution %s is not running", nodeExecID)
	}
	return nil
}

// FindRunByID retrieves a run with its node executions, ordered by
// execution order.
func (r *RunRepository) FindRunByID(ctx context.Context, runID uuid.UUID) (*models.WorkflowRun, []*models.NodeExecution, error) {
	run := &storagemodels.WorkflowRunModel{}
	err := r.db.NewSelect().
		Model(run).
		Relation("NodeExecutions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("execution_order ASC")
		}).
		Where("r.id = ?", runID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, models.ErrRunNotFound
		}
		return nil, nil, fmt.Errorf("failed to find run: %w", err)
	}

	var execs []*models.NodeExecution
	for _, ne := range run.NodeExecutions {
		execs = append(execs, storagemodels.ToDomainNodeExecution(ne))
	}
	return storagemodels.ToDomainRun(run), execs, nil
}
