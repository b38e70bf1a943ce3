// =============================
// File: internal/client/client.go
// =============================
package client

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

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/launchpad"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status     int
	Kind       string
	Message    string
	Violations []string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d: %s: %s", e.Status, e.Kind, e.Message)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.Status >= http.StatusInternalServerError
}

// Client talks to a woofpad server. Transport errors and 5xx answers are
// retried with exponential backoff; 4xx answers are returned at once.
type Client struct {
	endpoint string
	http     *http.Client
	retries  uint
	interval time.Duration
	logger   *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetries sets how many times a failed request is re-sent.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = uint(n)
		}
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the server at endpoint, e.g. http://localhost:8080.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		retries:  3,
		interval: 200 * time.Millisecond,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("client")
	return c
}

// Execute sends an envelope and returns the committed response.
func (c *Client) Execute(ctx context.Context, env launchpad.Envelope) (*launchpad.Response, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	var resp launchpad.Response
	if err := c.do(ctx, http.MethodPost, "/api/v1/execute", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Query runs q and decodes the answer into out.
func (c *Client) Query(ctx context.Context, q launchpad.QueryMsg, out interface{}) error {
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/query", body, out)
}

// Get fetches a REST path such as /api/v1/pools/{token} into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Health returns nil when the server reports healthy.
func (c *Client) Health(ctx context.Context) error {
	var status map[string]string
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return err
	}
	if status["status"] != "healthy" {
		return fmt.Errorf("server unhealthy: %v", status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	url := c.endpoint + path

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.interval
	policy.MaxInterval = c.interval * 10

	notify := func(err error, wait time.Duration) {
		c.logger.Info("Retrying request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
			zap.Duration("backoff", wait))
	}

	operation := func() (struct{}, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(ctx.Err())
			}
			return struct{}{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return struct{}{}, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			apiErr := decodeAPIError(resp.StatusCode, data)
			if apiErr.Retryable() {
				return struct{}{}, apiErr
			}
			return struct{}{}, backoff.Permanent(apiErr)
		}
		if out == nil {
			return struct{}{}, nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.retries+1),
		backoff.WithNotify(notify))
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			c.logger.Warn("Request failed", zap.String("path", path), zap.Error(err))
		}
		return err
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var body struct {
		Error struct {
			Kind       string   `json:"kind"`
			Message    string   `json:"message"`
			Violations []string `json:"violations"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Kind == "" {
		return &APIError{Status: status, Message: strings.TrimSpace(string(data))}
	}
	return &APIError{
		Status:     status,
		Kind:       body.Error.Kind,
		Message:    body.Error.Message,
		Violations: body.Error.Violations,
	}
}
