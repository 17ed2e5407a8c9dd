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

// CollectionRepository persists vector collection metadata.
type CollectionRepository struct {
	db *bun.DB
}

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(db *bun.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Create inserts a collection metadata record. The unique index on
// (user_id, name) backs the uniqueness invariant.
func (r *CollectionRepository) Create(ctx context.Context, collection *models.VectorCollection) error {
	model := &storagemodels.VectorCollectionModel{
		ID:            collection.ID,
		UserID:        collection.UserID,
		Name:          collection.Name,
		Dimension:     collection.Dimension,
		IndexPath:     collection.IndexPath,
		DocumentCount: collection.DocumentCount,
		CreatedAt:     collection.CreatedAt,
		UpdatedAt:     collection.UpdatedAt,
	}
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// FindByUserAndName retrieves a collection by its user-scoped name.
func (r *CollectionRepository) FindByUserAndName(ctx context.Context, userID uuid.UUID, name string) (*models.VectorCollection, error) {
	model := &storagemodels.VectorCollectionModel{}
	err := r.db.NewSelect().
		Model(model).
		Where("user_id = ?", userID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("failed to find collection: %w", err)
	}
	return storagemodels.ToDomainCollection(model), nil
}

// List returns all collections owned by the user, newest first.
func (r *CollectionRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.VectorCollection, error) {
	var rows []*storagemodels.VectorCollectionModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	collections := make([]*models.VectorCollection, len(rows))
	for i, row := range rows {
		collections[i] = storagemodels.ToDomainCollection(row)
	}
	return collections, nil
}

// AddToDocumentCount adjusts the document count by delta.
func (r *CollectionRepository) AddToDocumentCount(ctx context.Context, id uuid.UUID, delta int) error {
	res, err := r.db.NewUpdate().
		Model((*storagemodels.VectorCollectionModel)(nil)).
		Set("document_count = document_count + ?", delta).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update document count: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.ErrCollectionNotFound
	}
	return nil
}

// Delete removes a collection metadata record.
func (r *CollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*storagemodels.VectorCollectionModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.ErrCollectionNotFound
	}
	return nil
}
