package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorkflowModel represents a workflow definition in the database.
type WorkflowModel struct {
	bun.BaseModel `bun:"table:workflows,alias:w"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID      uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	// Relationships
	Nodes []*NodeModel `bun:"rel:has-many,join:id=workflow_id" json:"nodes,omitempty"`
	Edges []*EdgeModel `bun:"rel:has-many,join:id=workflow_id" json:"edges,omitempty"`
}

// BeforeInsert hook to set timestamps.
func (w *WorkflowModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
