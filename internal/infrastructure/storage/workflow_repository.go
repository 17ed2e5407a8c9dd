// Package storage implements the persistence repositories over bun
// and PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/flowmesh/flowmesh/pkg/models"

	storagemodels "github.com/flowmesh/flowmesh/internal/infrastructure/storage/models"
)

// WorkflowRepository loads workflow definitions for execution.
type WorkflowRepository struct {
	db *bun.DB
}

// NewWorkflowRepository creates a new WorkflowRepository.
func NewWorkflowRepository(db *bun.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// LoadWorkflowForExecution loads a workflow with its nodes and edges,
// scoped to the claimed owner. A missing workflow and a workflow owned
// by someone else are indistinguishable to the caller.
func (r *WorkflowRepository) LoadWorkflowForExecution(ctx context.Context, workflowID, userID uuid.UUID) (*models.Workflow, []*models.Node, []*models.Edge, error) {
	workflow := &storagemodels.WorkflowModel{}
	err := r.db.NewSelect().
		Model(workflow).
		Relation("Nodes").
		Relation("Edges").
		Where("w.id = ?", workflowID).
		Where("w.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, models.ErrNotAuthorized
		}
		return nil, nil, nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	domain := storagemodels.ToDomainWorkflow(workflow)
	return domain, domain.Nodes, domain.Edges, nil
}
