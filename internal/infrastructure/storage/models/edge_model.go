package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrSelfReferenceEdge rejects edges whose source and target coincide.
var ErrSelfReferenceEdge = errors.New("edge cannot reference the same node as source and target")

// EdgeModel represents a directed edge between two nodes of one
// workflow in the database.
type EdgeModel struct {
	bun.BaseModel `bun:"table:edges,alias:e"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	WorkflowID   uuid.UUID `bun:"workflow_id,notnull,type:uuid" json:"workflow_id"`
	SourceNodeID uuid.UUID `bun:"source_node_id,notnull,type:uuid" json:"source_node_id"`
	TargetNodeID uuid.UUID `bun:"target_node_id,notnull,type:uuid" json:"target_node_id"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	// Relationships
	Workflow   *WorkflowModel `bun:"rel:belongs-to,join:workflow_id=id" json:"workflow,omitempty"`
	SourceNode *NodeModel     `bun:"rel:belongs-to,join:source_node_id=id" json:"source_node,omitempty"`
	TargetNode *NodeModel     `bun:"rel:belongs-to,join:target_node_id=id" json:"target_node,omitempty"`
}

// BeforeInsert hook to set timestamps and reject self-loops.
func (e *EdgeModel) BeforeInsert(ctx interface{}) error {
	e.CreatedAt = time.Now()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.SourceNodeID == e.TargetNodeID {
		return ErrSelfReferenceEdge
	}
	return nil
}
