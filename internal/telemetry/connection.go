// Package telemetry fetches production runtime data from the org's
// telemetry backend. Unavailability is always a classified status, never
// an error: a scan that cannot reach telemetry degrades to static
// severities instead of failing.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forcemetrics/apexscan/domain"
)

// Connection issues a single request to the telemetry backend. One call
// is one attempt; the service retries on top of it.
type Connection interface {
	Request(ctx context.Context, method, path string, body any) (*domain.RuntimeReport, error)
}

// APIError is a non-2xx response from the telemetry backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telemetry error (status %d): %s", e.StatusCode, e.Body)
}

// HTTPConnection talks to the telemetry backend over HTTP.
type HTTPConnection struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewHTTPConnection creates a connection to the given base URL. timeout
// bounds each individual request.
func NewHTTPConnection(baseURL string, timeout time.Duration) *HTTPConnection {
	return &HTTPConnection{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetAuthToken attaches a bearer token to subsequent requests.
func (c *HTTPConnection) SetAuthToken(token string) {
	c.authToken = token
}

// Request implements Connection.
func (c *HTTPConnection) Request(ctx context.Context, method, path string, body any) (*domain.RuntimeReport, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var report domain.RuntimeReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &report, nil
}
