// Package vectorstore implements the on-disk similarity index behind
// the vector store interface. Indices persist under a configured base
// path, one collection per physical key; chromem-go owns the in-process
// collection cache and invalidates it on delete.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/models"
)

// Store is a clients.VectorStore backed by a persistent chromem-go
// database. Safe for concurrent create/delete of distinct keys.
type Store struct {
	db     *chromem.DB
	embed  chromem.EmbeddingFunc
	logger zerolog.Logger
}

// NewStore opens (or creates) the persistent database rooted at
// basePath.
func NewStore(basePath string, embed chromem.EmbeddingFunc, logger zerolog.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(basePath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}
	return &Store{
		db:     db,
		embed:  embed,
		logger: logger.With().Str("component", "vectorstore").Logger(),
	}, nil
}

// CreateCollection creates a new index under the physical key and
// seeds it with the given documents.
func (s *Store) CreateCollection(ctx context.Context, name string, docs []models.VectorDocument) error {
	if existing := s.db.GetCollection(name, s.embed); existing != nil {
		return fmt.Errorf("collection %s already exists", name)
	}

	collection, err := s.db.CreateCollection(name, nil, s.embed)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	if err := collection.AddDocuments(ctx, toChromemDocs(docs), 1); err != nil {
		// Seeding failed; drop the empty index so the key is reusable.
		if delErr := s.db.DeleteCollection(name); delErr != nil {
			s.logger.Error().Err(delErr).Str("collection", name).Msg("failed to clean up after seeding failure")
		}
		return fmt.Errorf("failed to seed collection %s: %w", name, err)
	}

	return nil
}

// AddDocuments appends documents to an existing index.
func (s *Store) AddDocuments(ctx context.Context, name string, docs []models.VectorDocument) error {
	collection := s.db.GetCollection(name, s.embed)
	if collection == nil {
		return fmt.Errorf("collection %s does not exist", name)
	}
	if err := collection.AddDocuments(ctx, toChromemDocs(docs), 1); err != nil {
		return fmt.Errorf("failed to add documents to %s: %w", name, err)
	}
	return nil
}

// Search embeds the query and returns the nearest documents. Hits
// below the score threshold are dropped before the list is built.
func (s *Store) Search(ctx context.Context, name, query string, opts clients.SearchOptions) ([]models.SearchHit, error) {
	collection := s.db.GetCollection(name, s.embed)
	if collection == nil {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}

	count := collection.Count()
	if count == 0 {
		return []models.SearchHit{}, nil
	}
	nResults := opts.TopK
	if nResults > count {
		nResults = count
	}

	results, err := collection.Query(ctx, query, nResults, opts.MetadataFilter, nil)
	if err != nil {
		return nil, fmt.Errorf("query against %s failed: %w", name, err)
	}

	hits := make([]models.SearchHit, 0, len(results))
	for _, result := range results {
		score := float64(result.Similarity)
		if opts.ScoreThreshold != nil && score < *opts.ScoreThreshold {
			continue
		}
		hits = append(hits, models.SearchHit{
			Text:     result.Content,
			Score:    score,
			Metadata: result.Metadata,
		})
	}

	return hits, nil
}

// DeleteCollection removes the index and its files. chromem drops the
// cached instance for the key as part of the delete.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	return nil
}

// CollectionExists reports whether an index exists under the key.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	return s.db.GetCollection(name, s.embed) != nil, nil
}

func toChromemDocs(docs []models.VectorDocument) []chromem.Document {
	converted := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		converted[i] = chromem.Document{
			ID:       uuid.NewString(),
			Content:  doc.Text,
			Metadata: doc.Metadata,
		}
	}
	return converted
}
