package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NodeExecutionModel represents one node's execution within a run in
// the database. ExecutionOrder values are dense 0..N-1 within a run.
type NodeExecutionModel struct {
	bun.BaseModel `bun:"table:node_executions,alias:ne"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	RunID          uuid.UUID  `bun:"run_id,notnull,type:uuid" json:"run_id"`
	NodeID         uuid.UUID  `bun:"node_id,notnull,type:uuid" json:"node_id"`
	Status         string     `bun:"status,notnull,default:'running'" json:"status"`
	ExecutionOrder int        `bun:"execution_order,notnull" json:"execution_order"`
	OutputData     JSONBMap   `bun:"output_data,type:jsonb" json:"output_data,omitempty"`
	ErrorMessage   string     `bun:"error_message" json:"error_message,omitempty"`
	StartedAt      time.Time  `bun:"started_at,notnull,default:current_timestamp" json:"started_at"`
	CompletedAt    *time.Time `bun:"completed_at" json:"completed_at,omitempty"`

	// Relationships
	Run  *WorkflowRunModel `bun:"rel:belongs-to,join:run_id=id" json:"run,omitempty"`
	Node *NodeModel        `bun:"rel:belongs-to,join:node_id=id" json:"node,omitempty"`
}

// BeforeInsert hook to set defaults.
func (ne *NodeExecutionModel) BeforeInsert(ctx interface{}) error {
	if ne.ID == uuid.Nil {
		ne.ID = uuid.New()
	}
	if ne.StartedAt.IsZero() {
		ne.StartedAt = time.Now()
	}
	if ne.Status == "" {
		ne.Status = "running"
	}
	return nil
}

// IsTerminal returns true if the node execution reached a terminal state.
func (ne *NodeExecutionModel) IsTerminal() bool {
	return ne.Status == "completed" || ne.Status == "failed"
}
