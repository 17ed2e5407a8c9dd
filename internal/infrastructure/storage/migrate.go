package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	storagemodels "github.com/flowmesh/flowmesh/internal/infrastructure/storage/models"
)

// tables in dependency order: parents before children.
var tables = []interface{}{
	(*storagemodels.WorkflowModel)(nil),
	(*storagemodels.NodeModel)(nil),
	(*storagemodels.EdgeModel)(nil),
	(*storagemodels.WorkflowRunModel)(nil),
	(*storagemodels.NodeExecutionModel)(nil),
	(*storagemodels.VectorCollectionModel)(nil),
}

// indexes back the model invariants: node names unique per workflow,
// edge pairs unique per workflow, collection names unique per user.
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_workflow_name ON nodes (workflow_id, name)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_edges_workflow_pair ON edges (workflow_id, source_node_id, target_node_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_vector_collections_user_name ON vector_collections (user_id, name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_runs_workflow ON workflow_runs (workflow_id, started_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_node_executions_run ON node_executions (run_id, execution_order)`,
}

// Migrate creates the schema. Idempotent; safe to run at startup.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, table := range tables {
		if _, err := db.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table, err)
		}
	}
	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Drop removes the schema in reverse dependency order. Used by the
// migrate command's -drop flag.
func Drop(ctx context.Context, db *bun.DB) error {
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(tables[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", tables[i], err)
		}
	}
	return nil
}
