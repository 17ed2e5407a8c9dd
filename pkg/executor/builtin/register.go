package builtin

import (
	"time"

	"github.com/flowmesh/flowmesh/internal/application/collections"
	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/executor"
)

// Dependencies carries the runtime clients the built-in executors bind to.
type Dependencies struct {
	LLM         clients.LLMClient
	HTTP        clients.HTTPClient
	SQL         clients.SQLExecutor
	Collections *collections.Service

	LLMDefaults        LLMDefaults
	HTTPDefaultTimeout time.Duration
}

// RegisterBuiltins registers all built-in executors with the registry.
// Applications call this once at startup after constructing the
// runtime clients.
func RegisterBuiltins(registry *executor.Registry, deps Dependencies) error {
	executors := []executor.Executor{
		NewLLMCallExecutor(deps.LLM, deps.LLMDefaults),
		NewHTTPRequestExecutor(deps.HTTP, deps.HTTPDefaultTimeout),
		NewVectorSearchExecutor(deps.Collections),
		NewDBWriteExecutor(deps.SQL),
	}

	for _, exec := range executors {
		if err := registry.Register(exec.Type(), exec); err != nil {
			return err
		}
	}

	return nil
}

// MustRegisterBuiltins registers all built-in executors and panics on error.
func MustRegisterBuiltins(registry *executor.Registry, deps Dependencies) {
	if err := RegisterBuiltins(registry, deps); err != nil {
		panic("failed to register built-in executors: " + err.Error())
	}
}
