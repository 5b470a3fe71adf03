// Package backend is the typed client for the commerce backend REST API.
//
// The backend owns pricing, inventory, order lifecycle and payment
// settlement; this client only adds the base URL and bearer token, and maps
// failures onto APIError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"shopcart/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// ErrUnauthorised is wrapped by APIError for 401 and 403 responses. Callers
// must drop the session that produced the token.
var ErrUnauthorised = errors.New("backend rejected the session token")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap exposes ErrUnauthorised for credential failures.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorised
	}
	return nil
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	RateBurst  int
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// Client calls the commerce backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a backend client.
func New(opts Options, logger zerolog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: opts.BaseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		metrics: opts.Metrics,
		logger:  logger.With().Str("component", "backend-client").Logger(),
	}
}

// do sends one request. token may be empty for public endpoints; body and
// out may be nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("backend rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveBackend(method, 0, time.Since(start))
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveBackend(method, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read backend response for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
			Method:     method,
			Path:       path,
		}
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("backend returned error")
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode backend response for %s: %w", path, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Message) > 0 {
		var msg string
		if json.Unmarshal(body.Message, &msg) == nil && msg != "" {
			return msg
		}
		// Some validators answer with a list of messages.
		var msgs []string
		if json.Unmarshal(body.Message, &msgs) == nil && len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "Network error"
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) patch(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, token, body, out)
}

func (c *Client) delete(ctx context.Context, path, token string) error {
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// withQuery appends encoded query values to path.
func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

// envelope is the `{ "data": ... }` wrapper some endpoints answer with.
type envelope[T any] struct {
	Data *T `json:"data"`
}
