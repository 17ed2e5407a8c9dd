package builtin

import (
	"context"
	"fmt"

	"github.com/flowmesh/flowmesh/internal/application/collections"
	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/executor"
	"github.com/flowmesh/flowmesh/pkg/models"
)

const (
	defaultTopK = 5
	maxTopK     = 100
)

// VectorSearchExecutor executes faiss_search nodes against the
// caller's vector collections. User scoping comes from the execution
// info the engine attaches to the context.
type VectorSearchExecutor struct {
	*executor.BaseExecutor
	service *collections.Service
}

// NewVectorSearchExecutor creates a new vector search executor.
func NewVectorSearchExecutor(service *collections.Service) *VectorSearchExecutor {
	return &VectorSearchExecutor{
		BaseExecutor: executor.NewBaseExecutor(models.NodeTypeFAISSSearch),
		service:      service,
	}
}

// Validate validates the faiss_search node configuration.
func (e *VectorSearchExecutor) Validate(config map[string]interface{}) error {
	if err := e.ValidateRequired(config, "collection_name", "query"); err != nil {
		return err
	}
	name, err := e.GetString(config, "collection_name")
	if err != nil {
		return err
	}
	if err := models.ValidateCollectionName(name); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	if _, err := e.GetString(config, "query"); err != nil {
		return err
	}

	topK := e.GetIntDefault(config, "top_k", defaultTopK)
	if topK < 1 || topK > maxTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d, got %d", models.ErrInvalidConfig, maxTopK, topK)
	}

	if _, ok := config["score_threshold"]; ok {
		threshold, err := e.GetFloat(config, "score_threshold")
		if err != nil {
			return err
		}
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: score_threshold must be between 0 and 1, got %v", models.ErrInvalidConfig, threshold)
		}
	}

	return nil
}

// Execute runs one similarity search. Hits below the score threshold
// are dropped by the store before the result list is built.
func (e *VectorSearchExecutor) Execute(ctx context.Context, config map[string]interface{}, input map[string]interface{}) (map[string]interface{}, error) {
	info, ok := executor.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("execution info missing from context")
	}

	name, err := e.GetString(config, "collection_name")
	if err != nil {
		return nil, err
	}
	query, err := e.GetString(config, "query")
	if err != nil {
		return nil, err
	}

	opts := clients.SearchOptions{
		TopK: e.GetIntDefault(config, "top_k", defaultTopK),
	}
	if _, present := config["score_threshold"]; present {
		threshold := e.GetFloatDefault(config, "score_threshold", 0)
		opts.ScoreThreshold = &threshold
	}
	if filter, err := e.GetStringMap(config, "metadata_filter"); err == nil {
		opts.MetadataFilter = filter
	}

	hits, err := e.service.Search(ctx, info.UserID, name, query, opts)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]interface{}, len(hits))
	for i, hit := range hits {
		results[i] = map[string]interface{}{
			"text":     hit.Text,
			"score":    hit.Score,
			"metadata": hit.Metadata,
		}
	}

	output := map[string]interface{}{
		"results":         results,
		"query":           query,
		"collection_name": name,
		"total_results":   len(results),
		"top_k":           opts.TopK,
		"status":          "success",
	}
	if opts.ScoreThreshold != nil {
		output["score_threshold"] = *opts.ScoreThreshold
	}

	return output, nil
}
