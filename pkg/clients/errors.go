package clients

import "errors"

// LLM client error kinds.
var (
	// ErrModelUnavailable means the call was never attempted.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrGenerationFailed is a transient generation failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrContextOverflow means the prompt exceeded the model context.
	ErrContextOverflow = errors.New("context overflow")
)

// HTTP client error kinds.
var (
	ErrHTTPTimeout   = errors.New("http request timed out")
	ErrHTTPTransport = errors.New("http transport error")
	ErrHTTPProtocol  = errors.New("http protocol error")
)
