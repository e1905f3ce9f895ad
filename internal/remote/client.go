// Package remote is the HTTP client for the remote analysis and prediction
// service. Every failure is returned as an error; deciding what to do about
// it belongs to the coordinator.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Service paths, relative to the configured base URL.
const (
	AnalysisPath   = "/api/v1/analyze-workflow"
	PredictionPath = "/api/v1/ml/predict"
)

const maxErrorBody = 512

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("remote: service not configured")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: status %d", e.Code)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Code, e.Body)
}

// MalformedError is a 2xx response whose body could not be used.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "remote: malformed response: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}

// Client talks to the remote service.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client. An empty baseURL yields a client whose calls
// all fail with ErrNotConfigured. A zero timeout leaves deadlines to the
// caller's context.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// postJSON sends in as JSON and decodes a 2xx response into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("remote: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("remote: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return &StatusError{Code: httpResp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("remote: read response: %w", ctxErr)
		}
		return malformed("decode: %v", err)
	}
	return nil
}
