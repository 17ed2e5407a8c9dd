package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// VectorCollection represents a user-owned named collection of
// documents backed by an on-disk similarity index.
type VectorCollection struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Dimension     int       `json:"dimension"`
	IndexPath     string    `json:"index_path"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VectorDocument is a unit of text plus metadata stored in a collection.
type VectorDocument struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchHit is a single similarity search result.
type SearchHit struct {
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateCollectionName checks a logical collection name against the
// allowed character set.
func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("invalid collection name %q: only letters, digits, underscore and dash are allowed", name)}
	}
	return nil
}

// PhysicalKey computes the physical index identity for a user-scoped
// collection. This is the only key ever passed to the vector store.
func PhysicalKey(userID uuid.UUID, name string) string {
	return userID.String() + "_" + name
}
