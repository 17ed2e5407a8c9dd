// Package llm implements the LLM client over the OpenAI Chat
// Completions API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/flowmesh/flowmesh/pkg/clients"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// Client is a clients.LLMClient backed by go-openai. Access to the
// model is serialized: the underlying deployment exposes a single
// model instance, so concurrent runs wait their turn.
type Client struct {
	api    *openai.Client
	model  string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewClient creates an OpenAI-backed LLM client.
func NewClient(apiKey, model string, logger zerolog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:    openai.NewClient(apiKey),
		model:  model,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

// Generate produces text for the prompt. TopK is accepted for
// interface compatibility; the Chat Completions API has no equivalent
// parameter and it is ignored.
func (c *Client) Generate(ctx context.Context, req clients.GenerateRequest) (*clients.GenerateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.TopP > 0 {
		chatReq.TopP = float32(req.TopP)
	}
	if req.TopK > 0 {
		c.logger.Debug().Int("top_k", req.TopK).Msg("top_k is not supported by the chat API, ignoring")
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", clients.ErrGenerationFailed)
	}

	return &clients.GenerateResult{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// classifyError maps transport and API failures onto the client error kinds.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		switch {
		case strings.Contains(msg, "context length") || strings.Contains(msg, "maximum context"):
			return fmt.Errorf("%w: %v", clients.ErrContextOverflow, err)
		case apiErr.HTTPStatusCode == 503:
			return fmt.Errorf("%w: %v", clients.ErrModelUnavailable, err)
		default:
			return fmt.Errorf("%w: %v", clients.ErrGenerationFailed, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", clients.ErrModelUnavailable, err)
	}

	return fmt.Errorf("%w: %v", clients.ErrGenerationFailed, err)
}
