// Package httpx is the outbound HTTP client shared by the text-source and classifier
// adapters: request pacing, a circuit breaker per upstream, and retries with backoff.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/simonboegh/x-sentiment-tracker/internal/platform/retry"
)

const maxErrorBody = 512

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

type Options struct {
	Name              string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Retry             retry.Policy
	Header            http.Header
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout   time.Duration
	OnStateChange func(name string, from, to gobreaker.State)
	Transport     http.RoundTripper
}

func DefaultOptions(name string) Options {
	return Options{
		Name:              name,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 2,
		Burst:             1,
		Retry: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   250 * time.Millisecond,
			RateLimitBackoff: 2 * time.Second,
			MaxBackoff:       5 * time.Second,
		},
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

type Client struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	policy  retry.Policy
	header  http.Header
}

func New(opts Options) *Client {
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Client errors say nothing about upstream health.
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if opts.OnStateChange != nil {
				opts.OnStateChange(name, from, to)
			}
		},
	})

	return &Client{
		name:    opts.Name,
		http:    &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		limiter: rate.NewLimiter(limit, opts.Burst),
		breaker: breaker,
		policy:  opts.Retry,
		header:  opts.Header.Clone(),
	}
}

func (c *Client) Name() string { return c.name }

// Healthy reports an error while the circuit breaker is open.
func (c *Client) Healthy(_ context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", c.name, gobreaker.ErrOpenState)
	}
	return nil
}

func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, body, out)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	_, err := retry.Do(ctx, c.policy, classify, func(ctx context.Context) (struct{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return struct{}{}, &retry.PermanentError{Err: fmt.Errorf("pacing: %w", err)}
		}
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.roundTrip(ctx, method, url, body, out)
		})
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.name, method, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return retry.Stop
	}
	var pe *retry.PermanentError
	if errors.As(err, &pe) {
		return retry.Stop
	}
	var de *decodeError
	if errors.As(err, &de) {
		return retry.Stop
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusTooManyRequests:
			return retry.After
		case se.StatusCode >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}

	return retry.Retry
}
