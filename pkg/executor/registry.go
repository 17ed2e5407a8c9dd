package executor

import (
	"fmt"
	"sync"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// Registry maps node types to executors with thread-safe registration.
// It is seeded once at startup and read from concurrent runs.
type Registry struct {
	mu        sync.RWMutex
	executors map[models.NodeType]Executor
}

// NewRegistry creates a new executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[models.NodeType]Executor),
	}
}

// Register registers an executor for a specific node type. An existing
// registration for the type is replaced.
func (r *Registry) Register(nodeType models.NodeType, exec Executor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if nodeType == "" {
		return fmt.Errorf("node type cannot be empty")
	}
	if exec == nil {
		return fmt.Errorf("executor cannot be nil")
	}

	r.executors[nodeType] = exec
	return nil
}

// Get retrieves an executor by node type.
func (r *Registry) Get(nodeType models.NodeType) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exec, ok := r.executors[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrExecutorNotFound, nodeType)
	}
	return exec, nil
}

// Has checks if an executor is registered for the given node type.
func (r *Registry) Has(nodeType models.NodeType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.executors[nodeType]
	return ok
}

// List returns all registered node types.
func (r *Registry) List() []models.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]models.NodeType, 0, len(r.executors))
	for nodeType := range r.executors {
		types = append(types, nodeType)
	}
	return types
}
