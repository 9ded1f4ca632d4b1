// Package httptransport provides an HTTP implementation of the guard
// Transport interface. It JSON-encodes the payload and POSTs it to the
// endpoint, carrying credentials as request headers.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jonwraymond/callguard/guard"
)

// Config configures the HTTP transport.
type Config struct {
	// Client is the underlying HTTP client. Request timeouts come from
	// the per-attempt context, not from the client.
	// Default: a fresh http.Client
	Client *http.Client

	// APIKey, when set, is sent on every request.
	APIKey string

	// APIKeyHeader is the header carrying the API key.
	// Default: "X-API-Key"
	APIKeyHeader string

	// BearerToken, when set, is sent as an Authorization bearer header.
	BearerToken string

	// UserAgent is the User-Agent header value.
	// Default: "callguard"
	UserAgent string

	// MaxBodyBytes caps how much of the response body is read.
	// Default: 1 MiB
	MaxBodyBytes int64
}

// Transport POSTs JSON payloads over HTTP. Safe for concurrent use.
type Transport struct {
	config Config
}

// New creates an HTTP transport, applying defaults for unset fields.
func New(config Config) *Transport {
	if config.Client == nil {
		config.Client = &http.Client{}
	}
	if config.APIKeyHeader == "" {
		config.APIKeyHeader = "X-API-Key"
	}
	if config.UserAgent == "" {
		config.UserAgent = "callguard"
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	return &Transport{config: config}
}

// Do performs a single POST attempt against the endpoint. Error-status
// responses are returned as a Response with no error; the guard's
// classifier decides how to treat them.
func (t *Transport) Do(ctx context.Context, endpoint string, payload map[string]any) (*guard.Response, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("httptransport: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httptransport: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", t.config.UserAgent)
	if t.config.APIKey != "" {
		req.Header.Set(t.config.APIKeyHeader, t.config.APIKey)
	}
	if t.config.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.config.BearerToken)
	}

	resp, err := t.config.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httptransport: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.config.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("httptransport: read response: %w", err)
	}

	return &guard.Response{
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}
