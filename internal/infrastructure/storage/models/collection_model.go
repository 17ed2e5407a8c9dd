package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// VectorCollectionModel represents vector collection metadata in the
// database. (user_id, name) is unique; the physical index identity is
// derived from it and recorded in index_path.
type VectorCollectionModel struct {
	bun.BaseModel `bun:"table:vector_collections,alias:vc"`

	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Dimension     int       `bun:"dimension,notnull" json:"dimension"`
	IndexPath     string    `bun:"index_path,notnull" json:"index_path"`
	DocumentCount int       `bun:"document_count,notnull,default:0" json:"document_count"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// BeforeInsert hook to set timestamps.
func (vc *VectorCollectionModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	vc.CreatedAt = now
	vc.UpdatedAt = now
	if vc.ID == uuid.Nil {
		vc.ID = uuid.New()
	}
	return nil
}
