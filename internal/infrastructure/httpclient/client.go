// Package httpclient implements the outbound HTTP client used by
// http_request nodes.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowmesh/flowmesh/pkg/clients"
)

// Client is a clients.HTTPClient over net/http. Transports are built
// per call because verify_tls is a per-node setting.
type Client struct {
	logger zerolog.Logger
}

// NewClient creates an HTTP client.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{logger: logger.With().Str("component", "http").Logger()}
}

// Do performs one HTTP request with the configured timeout, redirect
// and TLS behavior. JSON response bodies are decoded; binary bodies
// come back base64-encoded.
func (c *Client) Do(ctx context.Context, req *clients.HTTPRequest) (*clients.HTTPResponse, error) {
	targetURL, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clients.ErrHTTPProtocol, err)
	}

	var body io.Reader
	if req.Body != nil {
		data, err := encodeBody(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", clients.ErrHTTPProtocol, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, targetURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clients.ErrHTTPProtocol, err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Content-Type") == "" && body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpClient := &http.Client{Timeout: req.Timeout}
	if !req.VerifyTLS {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	if !req.FollowRedirects {
		httpClient.CheckRedirect = func(r *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	start := time.Now()
	resp, err := httpClient.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", clients.ErrHTTPTransport, err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Int("status", resp.StatusCode).
		Int64("elapsed_ms", elapsed.Milliseconds()).
		Msg("request completed")

	result := &clients.HTTPResponse{
		StatusCode:  resp.StatusCode,
		Headers:     flattenHeaders(resp.Header),
		ContentType: resp.Header.Get("Content-Type"),
		Elapsed:     elapsed,
	}
	decodeResponseBody(result, respBody)

	return result, nil
}

func buildURL(raw string, query map[string]string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		values := parsed.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		parsed.RawQuery = values.Encode()
	}
	return parsed.String(), nil
}

func encodeBody(body interface{}) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// decodeResponseBody fills Body or BodyBase64 from the raw response
// bytes based on content type.
func decodeResponseBody(result *clients.HTTPResponse, raw []byte) {
	if len(raw) == 0 {
		return
	}

	contentType := result.ContentType
	switch {
	case strings.Contains(contentType, "json"):
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err == nil {
			result.Body = decoded
			return
		}
		result.Body = string(raw)
	case isBinaryContentType(contentType):
		result.BodyBase64 = base64.StdEncoding.EncodeToString(raw)
	default:
		result.Body = string(raw)
	}
}

func isBinaryContentType(contentType string) bool {
	binaryPrefixes := []string{
		"image/",
		"audio/",
		"video/",
		"application/octet-stream",
		"application/pdf",
		"application/zip",
		"application/gzip",
	}
	for _, prefix := range binaryPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for key := range headers {
		flat[key] = headers.Get(key)
	}
	return flat
}

func classifyError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", clients.ErrHTTPTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", clients.ErrHTTPTimeout, err)
	}
	return fmt.Errorf("%w: %v", clients.ErrHTTPTransport, err)
}
