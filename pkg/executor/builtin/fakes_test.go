package builtin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flowmesh/flowmesh/internal/application/collections"
	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/models"
)

// fakeLLM returns a canned generation or a configured error.
type fakeLLM struct {
	lastRequest clients.GenerateRequest
	result      *clients.GenerateResult
	err         error
}

func (f *fakeLLM) Generate(ctx context.Context, req clients.GenerateRequest) (*clients.GenerateResult, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeHTTP returns a canned response or a configured error.
type fakeHTTP struct {
	lastRequest *clients.HTTPRequest
	response    *clients.HTTPResponse
	err         error
}

func (f *fakeHTTP) Do(ctx context.Context, req *clients.HTTPRequest) (*clients.HTTPResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

// fakeSQL records the statement and returns a canned result.
type fakeSQL struct {
	lastStructured *clients.StructuredStatement
	lastRaw        string
	lastParams     map[string]interface{}
	result         *clients.SQLResult
	err            error
}

func (f *fakeSQL) ExecuteStructured(ctx context.Context, stmt clients.StructuredStatement) (*clients.SQLResult, error) {
	f.lastStructured = &stmt
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSQL) ExecuteRaw(ctx context.Context, query string, params map[string]interface{}) (*clients.SQLResult, error) {
	f.lastRaw = query
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeVectorStore keeps documents in memory keyed by physical name and
// returns them in insertion order with descending fake scores.
type fakeVectorStore struct {
	docs        map[string][]models.VectorDocument
	searchCalls []string
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{docs: map[string][]models.VectorDocument{}}
}

func (f *fakeVectorStore) CreateCollection(ctx context.Context, name string, docs []models.VectorDocument) error {
	if _, ok := f.docs[name]; ok {
		return fmt.Errorf("collection %s already exists", name)
	}
	f.docs[name] = append([]models.VectorDocument{}, docs...)
	return nil
}

func (f *fakeVectorStore) AddDocuments(ctx context.Context, name string, docs []models.VectorDocument) error {
	if _, ok := f.docs[name]; !ok {
		return fmt.Errorf("collection %s does not exist", name)
	}
	f.docs[name] = append(f.docs[name], docs...)
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, name, query string, opts clients.SearchOptions) ([]models.SearchHit, error) {
	f.searchCalls = append(f.searchCalls, name)
	stored, ok := f.docs[name]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}

	var hits []models.SearchHit
	for i, doc := range stored {
		if len(hits) >= opts.TopK {
			break
		}
		score := 1.0 - float64(i)*0.1
		if opts.ScoreThreshold != nil && score < *opts.ScoreThreshold {
			continue
		}
		hits = append(hits, models.SearchHit{Text: doc.Text, Score: score, Metadata: doc.Metadata})
	}
	return hits, nil
}

func (f *fakeVectorStore) DeleteCollection(ctx context.Context, name string) error {
	if _, ok := f.docs[name]; !ok {
		return fmt.Errorf("collection %s does not exist", name)
	}
	delete(f.docs, name)
	return nil
}

func (f *fakeVectorStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	_, ok := f.docs[name]
	return ok, nil
}

// fakeCollectionRepo keeps collection metadata in memory.
type fakeCollectionRepo struct {
	collections map[string]*models.VectorCollection
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{collections: map[string]*models.VectorCollection{}}
}

func (f *fakeCollectionRepo) key(userID uuid.UUID, name string) string {
	return userID.String() + "/" + name
}

func (f *fakeCollectionRepo) Create(ctx context.Context, collection *models.VectorCollection) error {
	f.collections[f.key(collection.UserID, collection.Name)] = collection
	return nil
}

func (f *fakeCollectionRepo) FindByUserAndName(ctx context.Context, userID uuid.UUID, name string) (*models.VectorCollection, error) {
	collection, ok := f.collections[f.key(userID, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrCollectionNotFound, name)
	}
	return collection, nil
}

func (f *fakeCollectionRepo) List(ctx context.Context, userID uuid.UUID) ([]*models.VectorCollection, error) {
	var result []*models.VectorCollection
	for _, collection := range f.collections {
		if collection.UserID == userID {
			result = append(result, collection)
		}
	}
	return result, nil
}

func (f *fakeCollectionRepo) AddToDocumentCount(ctx context.Context, id uuid.UUID, delta int) error {
	for _, collection := range f.collections {
		if collection.ID == id {
			collection.DocumentCount += delta
			return nil
		}
	}
	return models.ErrCollectionNotFound
}

func (f *fakeCollectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for key, collection := range f.collections {
		if collection.ID == id {
			delete(f.collections, key)
			return nil
		}
	}
	return models.ErrCollectionNotFound
}

func newTestCollections(store clients.VectorStore) *collections.Service {
	return collections.NewService(newFakeCollectionRepo(), store, "/tmp/indices", 384, zerolog.Nop())
}
