// Package executor provides the executor interface and registry for
// node execution.
//
// Executors are responsible for executing individual nodes in a
// workflow. Each node type has a corresponding executor that
// implements the Executor interface.
//
// Built-in executors cover the platform's node-type set:
//   - llm_call: generates text with the configured LLM
//   - http_request: makes outbound HTTP requests
//   - faiss_search: similarity search over a user's vector collection
//   - db_write: structured or raw SQL against the application database
package executor

import (
	"context"
	"fmt"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// Executor is the interface that all node executors must implement.
type Executor interface {
	// Execute executes the node with the given (already rendered)
	// configuration and input. It returns the output document or an
	// error if execution fails.
	Execute(ctx context.Context, config map[string]interface{}, input map[string]interface{}) (map[string]interface{}, error)

	// Validate performs cheap structural checks on the node
	// configuration. It is called once per node before execution.
	Validate(config map[string]interface{}) error

	// Type returns the node type this executor handles.
	Type() models.NodeType
}

// BaseExecutor provides common config-access helpers for executors.
type BaseExecutor struct {
	nodeType models.NodeType
}

// NewBaseExecutor creates a new BaseExecutor.
func NewBaseExecutor(nodeType models.NodeType) *BaseExecutor {
	return &BaseExecutor{nodeType: nodeType}
}

// Type returns the node type.
func (b *BaseExecutor) Type() models.NodeType {
	return b.nodeType
}

// ValidateRequired validates that required fields are present in the configuration.
func (b *BaseExecutor) ValidateRequired(config map[string]interface{}, fields ...string) error {
	for _, field := range fields {
		if _, ok := config[field]; !ok {
			return fmt.Errorf("%w: required field missing: %s", models.ErrInvalidConfig, field)
		}
	}
	return nil
}

// GetString safely retrieves a string value from config.
func (b *BaseExecutor) GetString(config map[string]interface{}, key string) (string, error) {
	val, ok := config[key]
	if !ok {
		return "", fmt.Errorf("%w: field not found: %s", models.ErrInvalidConfig, key)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %s is not a string", models.ErrInvalidConfig, key)
	}
	return str, nil
}

// GetStringDefault safely retrieves a string value from config with a default.
func (b *BaseExecutor) GetStringDefault(config map[string]interface{}, key, defaultValue string) string {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	str, ok := val.(string)
	if !ok {
		return defaultValue
	}
	return str
}

// GetInt safely retrieves an int value from config. JSON numbers
// arrive as float64 and are accepted.
func (b *BaseExecutor) GetInt(config map[string]interface{}, key string) (int, error) {
	val, ok := config[key]
	if !ok {
		return 0, fmt.Errorf("%w: field not found: %s", models.ErrInvalidConfig, key)
	}
	switch v := val.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%w: field %s is not a number", models.ErrInvalidConfig, key)
	}
}

// GetIntDefault safely retrieves an int value from config with a default.
func (b *BaseExecutor) GetIntDefault(config map[string]interface{}, key string, defaultValue int) int {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

// GetFloat safely retrieves a float value from config.
func (b *BaseExecutor) GetFloat(config map[string]interface{}, key string) (float64, error) {
	val, ok := config[key]
	if !ok {
		return 0, fmt.Errorf("%w: field not found: %s", models.ErrInvalidConfig, key)
	}
	switch v := val.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: field %s is not a number", models.ErrInvalidConfig, key)
	}
}

// GetFloatDefault safely retrieves a float value from config with a default.
func (b *BaseExecutor) GetFloatDefault(config map[string]interface{}, key string, defaultValue float64) float64 {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return defaultValue
	}
}

// GetBoolDefault safely retrieves a bool value from config with a default.
func (b *BaseExecutor) GetBoolDefault(config map[string]interface{}, key string, defaultValue bool) bool {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	boolVal, ok := val.(bool)
	if !ok {
		return defaultValue
	}
	return boolVal
}

// GetMap safely retrieves a map value from config.
func (b *BaseExecutor) GetMap(config map[string]interface{}, key string) (map[string]interface{}, error) {
	val, ok := config[key]
	if !ok {
		return nil, fmt.Errorf("%w: field not found: %s", models.ErrInvalidConfig, key)
	}
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: field %s is not a map", models.ErrInvalidConfig, key)
	}
	return m, nil
}

// GetStringMap retrieves a map value from config and coerces its
// values to strings.
func (b *BaseExecutor) GetStringMap(config map[string]interface{}, key string) (map[string]string, error) {
	m, err := b.GetMap(config, key)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprintf("%v", v)
		}
		result[k] = s
	}
	return result, nil
}
