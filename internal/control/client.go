// Package control talks to the assistant backend's request/response API:
// listening control, log retrieval, usage statistics and health.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the backend's local API endpoint.
	DefaultBaseURL = "http://127.0.0.1:8765"
	// DefaultTimeout bounds each request.
	DefaultTimeout = 10 * time.Second
	// DefaultTailLines is the log tail length used when none is given.
	DefaultTailLines = 100
)

// ErrUnexpectedStatus is wrapped by errors for non-2xx responses to the
// read endpoints.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client is the backend API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client, including its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger for responses that are accepted but noteworthy.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for baseURL. Requests are traced through the global
// OpenTelemetry provider, which is a no-op unless tracing is configured.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StartListening asks the backend to begin voice listening. Only a transport
// failure is an error; a non-2xx reply is logged and treated as delivered.
func (c *Client) StartListening(ctx context.Context) error {
	return c.post(ctx, "start listening", "/voice/start")
}

// StopListening asks the backend to stop voice listening.
func (c *Client) StopListening(ctx context.Context) error {
	return c.post(ctx, "stop listening", "/voice/stop")
}

func (c *Client) post(ctx context.Context, op, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().
			Str("action", op).
			Int("status", resp.StatusCode).
			Str("body", strings.TrimSpace(string(excerpt))).
			Msg("control action answered with non-success status")
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// TailLogs returns up to n of the most recent backend log lines, oldest
// first. A non-positive n selects DefaultTailLines.
func (c *Client) TailLogs(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultTailLines
	}
	q := neturl.Values{"lines": []string{strconv.Itoa(n)}}

	var raw json.RawMessage
	if err := c.getJSON(ctx, "tail logs", "/system/logs?"+q.Encode(), &raw); err != nil {
		return nil, err
	}
	lines, err := decodeLines(raw)
	if err != nil {
		return nil, fmt.Errorf("tail logs: %w", err)
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// decodeLines accepts either a bare array of strings or an object with a
// "logs" array.
func decodeLines(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var lines []string
		if err := json.Unmarshal(trimmed, &lines); err != nil {
			return nil, fmt.Errorf("decode log lines: %w", err)
		}
		return lines, nil
	}
	var wrapped struct {
		Logs []string `json:"logs"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode log lines: %w", err)
	}
	return wrapped.Logs, nil
}

// ModelUsage is one row of the usage breakdown.
type ModelUsage struct {
	Model  string  `json:"model"`
	Tokens int64   `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// Usage is the backend's aggregate spend over a period.
type Usage struct {
	TotalCost   float64      `json:"total_cost"`
	TotalTokens int64        `json:"total_tokens"`
	ByModel     []ModelUsage `json:"by_model"`
}

// UsageStats returns aggregate usage over the last days days.
func (c *Client) UsageStats(ctx context.Context, days int) (*Usage, error) {
	if days <= 0 {
		days = 30
	}
	var u Usage
	if err := c.getJSON(ctx, "usage stats", "/usage/stats?days="+strconv.Itoa(days), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// HealthStatus is the backend's health response.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health checks that the backend API is reachable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var h HealthStatus
	if err := c.getJSON(ctx, "health", "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return unexpectedStatus(op, resp.StatusCode, resp.Body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func success(code int) bool {
	return code >= 200 && code < 300
}

// unexpectedStatus builds an error carrying the status code and a bounded
// excerpt of the response body.
func unexpectedStatus(op string, code int, body io.Reader) error {
	excerpt, readErr := io.ReadAll(io.LimitReader(body, 512))
	if readErr != nil {
		return fmt.Errorf("%s: %w %d (failed to read body: %v)", op, ErrUnexpectedStatus, code, readErr)
	}
	msg := strings.TrimSpace(string(excerpt))
	if msg == "" {
		return fmt.Errorf("%s: %w %d", op, ErrUnexpectedStatus, code)
	}
	return fmt.Errorf("%s: %w %d: %s", op, ErrUnexpectedStatus, code, msg)
}
