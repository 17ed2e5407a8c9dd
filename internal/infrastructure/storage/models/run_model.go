package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorkflowRunModel represents a workflow run in the database. Runs are
// append-only: created with status running and transitioned exactly
// once to completed or failed.
type WorkflowRunModel struct {
	bun.BaseModel `bun:"table:workflow_runs,alias:r"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	WorkflowID   uuid.UUID  `bun:"workflow_id,notnull,type:uuid" json:"workflow_id"`
	UserID       uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Status       string     `bun:"status,notnull,default:'running'" json:"status"`
	InputData    JSONBMap   `bun:"input_data,type:jsonb,default:'{}'" json:"input_data,omitempty"`
	OutputData   JSONBMap   `bun:"output_data,type:jsonb" json:"output_data,omitempty"`
	ErrorMessage string     `bun:"error_message" json:"error_message,omitempty"`
	StartedAt    time.Time  `bun:"started_at,notnull,default:current_timestamp" json:"started_at"`
	CompletedAt  *time.Time `bun:"completed_at" json:"completed_at,omitempty"`

	// Relationships
	Workflow       *WorkflowModel        `bun:"rel:belongs-to,join:workflow_id=id" json:"workflow,omitempty"`
	NodeExecutions []*NodeExecutionModel `bun:"rel:has-many,join:id=run_id" json:"node_executions,omitempty"`
}

// BeforeInsert hook to set defaults.
func (r *WorkflowRunModel) BeforeInsert(ctx interface{}) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if r.Status == "" {
		r.Status = "running"
	}
	return nil
}

// MarkCompleted sets the terminal completed state.
func (r *WorkflowRunModel) MarkCompleted(output JSONBMap) {
	now := time.Now()
	r.Status = "completed"
	r.OutputData = output
	r.CompletedAt = &now
}

// MarkFailed sets the terminal failed state.
func (r *WorkflowRunModel) MarkFailed(errMsg string) {
	now := time.Now()
	r.Status = "failed"
	r.ErrorMessage = errMsg
	r.CompletedAt = &now
}
