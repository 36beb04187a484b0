// Package fetch provides a JSON HTTP client with bounded linear-backoff retries.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"token-risk-scanner/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
	DefaultBackoff    = 300 * time.Millisecond
)

// Request describes a single HTTP call.
type Request struct {
	Method string // defaults to GET
	URL    string
	Header http.Header
	Body   []byte
}

// Client performs JSON HTTP calls with retries.
// Safe for concurrent use.
type Client struct {
	client     *http.Client
	provider   string
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets the total number of attempts. Values below 1 mean 1.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoff sets the base backoff. The wait before attempt k+1 is base*k.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithProvider sets the provider name used in metrics and logs.
func WithProvider(name string) ClientOption {
	return func(c *Client) {
		c.provider = name
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit limits attempts to rps per second with the given burst.
// Every attempt, retries included, waits for a token.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreaker wraps every attempt in a circuit breaker that opens
// after consecutiveFailures server-side failures and half-opens after cooldown.
// Client errors (4xx other than 429) do not count as failures.
func WithCircuitBreaker(name string, consecutiveFailures uint32, cooldown time.Duration) ClientOption {
	return func(c *Client) {
		if consecutiveFailures == 0 {
			consecutiveFailures = 5
		}
		st := gobreaker.Settings{
			Name:     name,
			Interval: 60 * time.Second,
			Timeout:  cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= consecutiveFailures
			},
			IsSuccessful: isBreakerSuccess,
		}
		c.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

// NewClient creates a new Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		client:     &http.Client{Timeout: DefaultTimeout},
		provider:   "http",
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}
	return c
}

// Do performs req with retries. A successful empty body yields (nil, nil).
// After the last failed attempt the last error is returned unchanged.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.URL == "" {
		return nil, ErrEmptyURL
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			wait := c.backoff * time.Duration(attempt-1)
			observability.RecordHTTPRetry(c.provider)
			c.logger.Debug().
				Str("provider", c.provider).
				Int("attempt", attempt).
				Dur("wait", wait).
				Err(lastErr).
				Msg("retrying request")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := c.attempt(ctx, req)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

// GetJSON performs a GET and decodes the body into T.
// A successful empty or null body yields (nil, nil).
func GetJSON[T any](ctx context.Context, c *Client, url string, header http.Header) (*T, error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &out, nil
}

// Bearer returns a header set carrying a bearer token.
func Bearer(token string) http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+token)
	return h
}

func (c *Client) attempt(ctx context.Context, req Request) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	var body json.RawMessage
	var err error
	if c.breaker != nil {
		var out any
		out, err = c.breaker.Execute(func() (any, error) {
			return c.roundTrip(ctx, req)
		})
		if err == nil {
			body, _ = out.(json.RawMessage)
		}
	} else {
		body, err = c.roundTrip(ctx, req)
	}
	observability.RecordHTTPAttempt(c.provider, time.Since(start).Seconds(), err)

	return body, err
}

func (c *Client) roundTrip(ctx context.Context, req Request) (json.RawMessage, error) {
	var reqBody io.Reader
	if req.Body != nil {
		reqBody = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(trimmed), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests
	}
	return false
}
