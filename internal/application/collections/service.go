// Package collections implements user-scoped named vector collections
// layered over the vector store. All operations take (userID,
// logicalName); the physical key handed to the store is always
// {userID}_{logicalName}, so two users' collections with the same name
// never share an index.
package collections

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/models"
)

// Repository persists vector collection metadata.
type Repository interface {
	Create(ctx context.Context, collection *models.VectorCollection) error
	FindByUserAndName(ctx context.Context, userID uuid.UUID, name string) (*models.VectorCollection, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.VectorCollection, error)
	AddToDocumentCount(ctx context.Context, id uuid.UUID, delta int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service coordinates collection metadata and the physical index.
type Service struct {
	repo      Repository
	store     clients.VectorStore
	basePath  string
	dimension int
	logger    zerolog.Logger
}

// NewService creates a collection service. basePath is the root
// directory for index files; dimension is the deployment-wide
// embedding dimension recorded on every collection.
func NewService(repo Repository, store clients.VectorStore, basePath string, dimension int, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		basePath:  basePath,
		dimension: dimension,
		logger:    logger.With().Str("component", "collections").Logger(),
	}
}

// Create creates a collection for the user with the initial documents.
// At least one document with non-empty text is required.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string, docs []models.VectorDocument) (*models.VectorCollection, error) {
	if err := models.ValidateCollectionName(name); err != nil {
		return nil, err
	}
	if err := validateDocuments(docs); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserAndName(ctx, userID, name)
	if err != nil && !errors.Is(err, models.ErrCollectionNotFound) {
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrCollectionExists, name)
	}

	key := models.PhysicalKey(userID, name)
	if err := s.store.CreateCollection(ctx, key, docs); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIndexBuildFailed, err)
	}

	now := time.Now()
	collection := &models.VectorCollection{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		Dimension:     s.dimension,
		IndexPath:     filepath.Join(s.basePath, key),
		DocumentCount: len(docs),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, collection); err != nil {
		// The index exists but the metadata write failed; tear the
		// index down so create stays all-or-nothing.
		if delErr := s.store.DeleteCollection(ctx, key); delErr != nil {
			s.logger.Error().Err(delErr).Str("physical_key", key).
				Msg("failed to remove index after metadata write failure; index is orphaned")
		}
		return nil, fmt.Errorf("failed to persist collection metadata: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Str("collection", name).
		Int("documents", len(docs)).Msg("collection created")

	return collection, nil
}

// Add appends documents to an existing collection and then raises the
// stored document count. The two are separate writes: when the count
// update fails the documents stay in the index and the error is
// returned.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, name string, docs []models.VectorDocument) (*models.VectorCollection, error) {
	if err := validateDocuments(docs); err != nil {
		return nil, err
	}

	collection, err := s.repo.FindByUserAndName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	count := collection.DocumentCount + len(docs)

	key := models.PhysicalKey(userID, name)
	if err := s.store.AddDocuments(ctx, key, docs); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIndexBuildFailed, err)
	}

	if err := s.repo.AddToDocumentCount(ctx, collection.ID, len(docs)); err != nil {
		return nil, fmt.Errorf("failed to update document count: %w", err)
	}
	collection.DocumentCount = count

	return collection, nil
}

// Search runs a similarity query against the user's collection.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, name, query string, opts clients.SearchOptions) ([]models.SearchHit, error) {
	collection, err := s.repo.FindByUserAndName(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	key := models.PhysicalKey(collection.UserID, collection.Name)
	hits, err := s.store.Search(ctx, key, query, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSearchFailed, err)
	}
	return hits, nil
}

// Get returns the user's collection metadata.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, name string) (*models.VectorCollection, error) {
	return s.repo.FindByUserAndName(ctx, userID, name)
}

// List returns all collections owned by the user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*models.VectorCollection, error) {
	return s.repo.List(ctx, userID)
}

// Delete removes the collection metadata and the physical index. When
// only one of the two succeeds the error is ErrCollectionDeletePartial
// and the log carries what is needed to finish the cleanup by hand.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	collection, err := s.repo.FindByUserAndName(ctx, userID, name)
	if err != nil {
		return err
	}

	key := models.PhysicalKey(userID, name)

	storeErr := s.store.DeleteCollection(ctx, key)
	repoErr := s.repo.Delete(ctx, collection.ID)

	if storeErr != nil || repoErr != nil {
		if storeErr != nil && repoErr != nil {
			return fmt.Errorf("failed to delete collection %s: index: %v; metadata: %w", name, storeErr, repoErr)
		}
		s.logger.Error().
			Str("user_id", userID.String()).
			Str("collection", name).
			Str("physical_key", key).
			Str("index_path", collection.IndexPath).
			AnErr("store_error", storeErr).
			AnErr("repo_error", repoErr).
			Msg("collection partially deleted")
		return fmt.Errorf("%w: %s", models.ErrCollectionDeletePartial, name)
	}

	s.logger.Info().Str("user_id", userID.String()).Str("collection", name).Msg("collection deleted")
	return nil
}

func validateDocuments(docs []models.VectorDocument) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: at least one document is required", models.ErrInvalidDocuments)
	}
	for i, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			return fmt.Errorf("%w: document %d has empty text", models.ErrInvalidDocuments, i)
		}
	}
	return nil
}
