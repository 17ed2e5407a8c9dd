package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NodeModel represents a workflow node in the database. Name is unique
// within the workflow; it is the key templates use to reference the
// node's output.
type NodeModel struct {
	bun.BaseModel `bun:"table:nodes,alias:n"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	WorkflowID uuid.UUID `bun:"workflow_id,notnull,type:uuid" json:"workflow_id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Type       string    `bun:"type,notnull" json:"type"`
	Config     JSONBMap  `bun:"config,type:jsonb,default:'{}'" json:"config"`
	PositionX  float64   `bun:"position_x,notnull,default:0" json:"position_x"`
	PositionY  float64   `bun:"position_y,notnull,default:0" json:"position_y"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	// Relationships
	Workflow *WorkflowModel `bun:"rel:belongs-to,join:workflow_id=id" json:"workflow,omitempty"`
}

// BeforeInsert hook to set timestamps.
func (n *NodeModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Config == nil {
		n.Config = make(JSONBMap)
	}
	return nil
}
