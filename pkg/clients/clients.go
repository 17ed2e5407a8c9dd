// Package clients defines the runtime capability interfaces the node
// handlers depend on: an LLM text generator, an HTTP client, a vector
// store and a SQL executor. Concrete implementations live under
// internal/infrastructure and are injected at startup.
package clients

import (
	"context"
	"time"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// GenerateRequest parameterizes one LLM generation call.
type GenerateRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	TopP        float64
	TopK        int
}

// GenerateResult is the outcome of one LLM generation call.
type GenerateResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// LLMClient generates text from a prompt. Implementations serialize
// access to the underlying model; callers may invoke it from
// concurrent runs.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// HTTPRequest parameterizes one outbound HTTP call.
type HTTPRequest struct {
	Method          string
	URL             string
	Headers         map[string]string
	Query           map[string]string
	Body            interface{}
	Timeout         time.Duration
	FollowRedirects bool
	VerifyTLS       bool
}

// HTTPResponse is the outcome of one outbound HTTP call. Body holds
// the decoded JSON document when the content type indicates JSON, the
// raw text otherwise; binary payloads arrive base64-encoded in
// BodyBase64 with Body left nil.
type HTTPResponse struct {
	StatusCode  int
	Headers     map[string]string
	ContentType string
	Body        interface{}
	BodyBase64  string
	Elapsed     time.Duration
}

// HTTPClient performs outbound HTTP requests.
type HTTPClient interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// SearchOptions bounds one similarity search.
type SearchOptions struct {
	TopK           int
	ScoreThreshold *float64
	MetadataFilter map[string]string
}

// VectorStore maintains named on-disk similarity indices. Names are
// physical keys; user scoping happens one layer above, in the
// collection service. Implementations may cache index instances
// in-process and must invalidate the cache entry on delete.
type VectorStore interface {
	CreateCollection(ctx context.Context, name string, docs []models.VectorDocument) error
	AddDocuments(ctx context.Context, name string, docs []models.VectorDocument) error
	Search(ctx context.Context, name, query string, opts SearchOptions) ([]models.SearchHit, error)
	DeleteCollection(ctx context.Context, name string) error
	CollectionExists(ctx context.Context, name string) (bool, error)
}

// SQLOperation is the closed set of structured SQL operations.
type SQLOperation string

const (
	SQLInsert SQLOperation = "INSERT"
	SQLUpdate SQLOperation = "UPDATE"
	SQLDelete SQLOperation = "DELETE"
	SQLSelect SQLOperation = "SELECT"
)

// StructuredStatement describes one structured SQL operation. All
// values are bound as parameters, never interpolated into SQL text.
type StructuredStatement struct {
	Operation SQLOperation
	Table     string
	Values    map[string]interface{}
	Where     map[string]interface{}
	Returning []string
}

// SQLResult is the outcome of one SQL execution.
type SQLResult struct {
	RowsAffected int64
	Returned     map[string]interface{}
	Rows         []map[string]interface{}
}

// SQLExecutor executes SQL statements. Each call runs in its own
// transaction on one pooled connection; implementations roll back on
// error before returning.
type SQLExecutor interface {
	ExecuteStructured(ctx context.Context, stmt StructuredStatement) (*SQLResult, error)
	ExecuteRaw(ctx context.Context, query string, params map[string]interface{}) (*SQLResult, error)
}
