package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/executor"
	"github.com/flowmesh/flowmesh/pkg/models"
)

var validHTTPMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// HTTPRequestExecutor executes http_request nodes against the injected
// HTTP client.
type HTTPRequestExecutor struct {
	*executor.BaseExecutor
	client         clients.HTTPClient
	defaultTimeout time.Duration
}

// NewHTTPRequestExecutor creates a new HTTP executor.
func NewHTTPRequestExecutor(client clients.HTTPClient, defaultTimeout time.Duration) *HTTPRequestExecutor {
	return &HTTPRequestExecutor{
		BaseExecutor:   executor.NewBaseExecutor(models.NodeTypeHTTPRequest),
		client:         client,
		defaultTimeout: defaultTimeout,
	}
}

// Validate validates the http_request node configuration.
func (e *HTTPRequestExecutor) Validate(config map[string]interface{}) error {
	if err := e.ValidateRequired(config, "url"); err != nil {
		return err
	}
	url, err := e.GetString(config, "url")
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("%w: url cannot be empty", models.ErrInvalidConfig)
	}

	method := e.GetStringDefault(config, "method", "GET")
	if !validHTTPMethods[method] {
		return fmt.Errorf("%w: invalid HTTP method: %s", models.ErrInvalidConfig, method)
	}

	if timeout := e.GetIntDefault(config, "timeout", 0); timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", models.ErrInvalidConfig)
	}

	return nil
}

// Execute performs one HTTP request.
func (e *HTTPRequestExecutor) Execute(ctx context.Context, config map[string]interface{}, input map[string]interface{}) (map[string]interface{}, error) {
	url, err := e.GetString(config, "url")
	if err != nil {
		return nil, err
	}

	req := &clients.HTTPRequest{
		Method:          e.GetStringDefault(config, "method", "GET"),
		URL:             url,
		Timeout:         e.defaultTimeout,
		FollowRedirects: e.GetBoolDefault(config, "follow_redirects", true),
		VerifyTLS:       e.GetBoolDefault(config, "verify_ssl", true),
		Body:            config["body"],
	}

	if timeout := e.GetIntDefault(config, "timeout", 0); timeout > 0 {
		req.Timeout = time.Duration(timeout) * time.Second
	}
	if headers, err := e.GetStringMap(config, "headers"); err == nil {
		req.Headers = headers
	}
	if query, err := e.GetStringMap(config, "query"); err == nil {
		req.Query = query
	}

	resp, err := e.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	body := resp.Body
	if resp.BodyBase64 != "" {
		body = resp.BodyBase64
	}

	return map[string]interface{}{
		"status_code": resp.StatusCode,
		"headers":     resp.Headers,
		"body":        body,
		"url":         url,
		"method":      req.Method,
		"elapsed_ms":  resp.Elapsed.Milliseconds(),
		"status":      "success",
	}, nil
}
