// Package flowmesh assembles the workflow execution platform: storage,
// runtime clients, the executor registry and the engine, wired from
// one configuration.
package flowmesh

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/flowmesh/flowmesh/internal/application/collections"
	"github.com/flowmesh/flowmesh/internal/config"
	"github.com/flowmesh/flowmesh/internal/infrastructure/httpclient"
	"github.com/flowmesh/flowmesh/internal/infrastructure/llm"
	"github.com/flowmesh/flowmesh/internal/infrastructure/monitoring"
	"github.com/flowmesh/flowmesh/internal/infrastructure/sqlexec"
	"github.com/flowmesh/flowmesh/internal/infrastructure/storage"
	"github.com/flowmesh/flowmesh/internal/infrastructure/vectorstore"
	"github.com/flowmesh/flowmesh/pkg/engine"
	"github.com/flowmesh/flowmesh/pkg/executor"
	"github.com/flowmesh/flowmesh/pkg/executor/builtin"
)

// Platform is the assembled execution platform.
type Platform struct {
	Engine      *engine.Engine
	Collections *collections.Service
	Runs        *storage.RunRepository
	DB          *bun.DB
}

// New builds the platform from configuration. The LLM model, the
// embedding function and the vector index cache are constructed here,
// once, and passed down by reference.
func New(cfg *config.Config, reg prometheus.Registerer, logger zerolog.Logger) (*Platform, error) {
	db := storage.NewDB(cfg.Database)

	embed := vectorstore.NewOpenAIEmbedding(cfg.OpenAIAPIKey, cfg.EmbeddingDimension)
	store, err := vectorstore.NewStore(cfg.VectorIndexBasePath, embed, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	collectionRepo := storage.NewCollectionRepository(db)
	collectionSvc := collections.NewService(collectionRepo, store, cfg.VectorIndexBasePath, cfg.EmbeddingDimension, logger)

	registry := executor.NewRegistry()
	deps := builtin.Dependencies{
		LLM:         llm.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, logger),
		HTTP:        httpclient.NewClient(logger),
		SQL:         sqlexec.NewExecutor(db, logger),
		Collections: collectionSvc,
		LLMDefaults: builtin.LLMDefaults{
			Temperature: cfg.LLMDefaultTemperature,
			MaxTokens:   cfg.LLMDefaultMaxTokens,
		},
		HTTPDefaultTimeout: time.Duration(cfg.HTTPDefaultTimeoutSecs) * time.Second,
	}
	if err := builtin.RegisterBuiltins(registry, deps); err != nil {
		return nil, fmt.Errorf("failed to register executors: %w", err)
	}

	var metrics engine.Metrics
	if reg != nil {
		metrics = monitoring.New(reg)
	}

	runs := storage.NewRunRepository(db)
	eng := engine.New(
		storage.NewWorkflowRepository(db),
		runs,
		registry,
		metrics,
		engine.Options{AllowDisconnected: cfg.AllowDisconnectedGraphs},
		logger,
	)

	return &Platform{
		Engine:      eng,
		Collections: collectionSvc,
		Runs:        runs,
		DB:          db,
	}, nil
}

// Close releases the platform's shared resources.
func (p *Platform) Close() error {
	return p.DB.Close()
}
