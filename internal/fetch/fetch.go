// Package fetch is the outbound HTTP boundary: a plain GET with a browser
// user agent, an explicit timeout and a small fixed retry budget for
// transient failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrForbidden is returned when the register answers 403. The pipeline
// treats it as zero results rather than a crash.
var ErrForbidden = errors.New("fetch forbidden by source")

const defaultUserAgent = "Mozilla/5.0 (compatible; afmwatch/1.0)"

// Options configures the client. Zero values fall back to usable defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Retries is the number of additional attempts after the first.
	Retries int
	Backoff time.Duration
}

// Client performs register page and export downloads.
type Client struct {
	http      *http.Client
	userAgent string
	retries   int
	backoff   time.Duration
}

// New creates a fetch client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		retries:   opts.Retries,
		backoff:   opts.Backoff,
	}
}

// Get downloads url, retrying transient failures (network errors, 5xx, 429)
// a bounded number of times with fixed backoff. A 403 is surfaced as
// ErrForbidden without retrying; any other non-2xx status is an error.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			slog.Warn("Retrying fetch",
				slog.String("url", url),
				slog.Int("attempt", attempt+1),
				slog.Any("error", lastErr))
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrForbidden) || !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", c.retries+1, lastErr)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", url, ErrForbidden)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s: %w", url, &statusError{code: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// isTransient reports whether an attempt is worth repeating: network-level
// failures and 5xx/429 statuses are; 4xx responses are not.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	// Network errors, timeouts and truncated bodies.
	return true
}
