// Package httpx is the shared upstream transport: a pooled HTTP client with
// bounded concurrency, per-host token-bucket rate limiting, retry with
// exponential backoff and jitter, and a circuit breaker per provider. Both
// provider adapters go through it; nothing else in the tree issues requests.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tokenscope/tokenscope/internal/metrics"
)

// Config configures one provider-scoped client.
type Config struct {
	Provider       string // short name used in logs, metrics, breaker
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	MaxConcurrency int
	RPS            float64 // token-bucket refill; 0 disables limiting
	Burst          int
	UserAgent      string
}

// Client is a rate-limited, breaker-guarded HTTP client for one provider.
type Client struct {
	cfg       Config
	http      *http.Client
	semaphore chan struct{}
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
}

// StatusError is returned for non-2xx responses, preserving the status code
// so adapters can map 404 to their own not-found errors.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// New creates a client, applying conservative defaults for zero fields.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = 8 * time.Second
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "TokenScope/1.0"
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Provider,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
			log.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: cfg.Timeout},
		semaphore: make(chan struct{}, cfg.MaxConcurrency),
		limiter:   limiter,
		breaker:   breaker,
	}
}

// Do executes the request with rate limiting, retries, and the breaker.
// Non-2xx statuses other than the retryable set are returned as responses,
// not errors; ReadJSON converts them to StatusError.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doWithRetries(ctx, req)
	})
	metrics.RecordRequest(c.cfg.Provider, err == nil, time.Since(start))

	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

func (c *Client) doWithRetries(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordRetry(c.cfg.Provider)
			backoff := c.backoff(attempt)
			log.Debug().
				Str("provider", c.cfg.Provider).
				Str("url", req.URL.String()).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying upstream request")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewind request body: %w", err)
			}
			req.Body = body
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
			if isRetryableError(err) && ctx.Err() == nil {
				continue
			}
			return nil, err
		}

		if isRetryableStatus(resp.StatusCode) && attempt < c.cfg.MaxRetries {
			resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode}
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.cfg.BackoffBase * time.Duration(1<<uint(attempt-1))
	if d > c.cfg.BackoffMax {
		d = c.cfg.BackoffMax
	}
	// Up to 10% jitter against thundering herd.
	return d + time.Duration(rand.Float64()*0.1*float64(d))
}

// BreakerOpen reports whether the provider circuit is currently open.
func (c *Client) BreakerOpen() bool {
	return c.breaker.State() == gobreaker.StateOpen
}

// Provider returns the client's provider name.
func (c *Client) Provider() string { return c.cfg.Provider }

// GetJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.readJSON(ctx, req, out)
}

// PostJSON issues a POST with a JSON body and decodes a 2xx JSON response.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.readJSON(ctx, req, out)
}

func (c *Client) readJSON(ctx context.Context, req *http.Request, out interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsNotFound reports whether the error is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
