// Package builtin provides the built-in executor implementations for
// the platform's node-type set.
package builtin

import (
	"context"
	"fmt"

	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/executor"
	"github.com/flowmesh/flowmesh/pkg/models"
)

// LLMDefaults carries deployment-wide fallbacks for LLM node config.
type LLMDefaults struct {
	Temperature float64
	MaxTokens   int
}

// LLMCallExecutor executes llm_call nodes against the injected LLM client.
type LLMCallExecutor struct {
	*executor.BaseExecutor
	client   clients.LLMClient
	defaults LLMDefaults
}

// NewLLMCallExecutor creates a new LLM executor.
func NewLLMCallExecutor(client clients.LLMClient, defaults LLMDefaults) *LLMCallExecutor {
	return &LLMCallExecutor{
		BaseExecutor: executor.NewBaseExecutor(models.NodeTypeLLMCall),
		client:       client,
		defaults:     defaults,
	}
}

// Validate validates the llm_call node configuration.
func (e *LLMCallExecutor) Validate(config map[string]interface{}) error {
	if err := e.ValidateRequired(config, "prompt_template"); err != nil {
		return err
	}
	if _, err := e.GetString(config, "prompt_template"); err != nil {
		return err
	}
	if _, ok := config["variables"]; ok {
		if _, err := e.GetMap(config, "variables"); err != nil {
			return err
		}
	}
	return nil
}

// Execute performs one generation call. Templates in the config are
// resolved by the engine before this method is called, so
// prompt_template arrives fully interpolated.
func (e *LLMCallExecutor) Execute(ctx context.Context, config map[string]interface{}, input map[string]interface{}) (map[string]interface{}, error) {
	prompt, err := e.GetString(config, "prompt_template")
	if err != nil {
		return nil, err
	}

	req := clients.GenerateRequest{
		Prompt:      prompt,
		Temperature: e.GetFloatDefault(config, "temperature", e.defaults.Temperature),
		MaxTokens:   e.GetIntDefault(config, "max_tokens", e.defaults.MaxTokens),
		TopP:        e.GetFloatDefault(config, "top_p", 0),
		TopK:        e.GetIntDefault(config, "top_k", 0),
	}

	result, err := e.client.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}

	return map[string]interface{}{
		"response":      result.Text,
		"model":         result.Model,
		"input_tokens":  result.InputTokens,
		"output_tokens": result.OutputTokens,
		"tokens_used":   result.InputTokens + result.OutputTokens,
		"temperature":   req.Temperature,
		"max_tokens":    req.MaxTokens,
		"status":        "success",
	}, nil
}
