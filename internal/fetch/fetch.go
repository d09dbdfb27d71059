// Package fetch retrieves source pages politely: a stable User-Agent,
// per-request timeouts, bounded retries with exponential backoff, and a
// hook for plugging in a JavaScript renderer for the few sources that
// need one.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/mkaelin/limmat-events/internal/metrics"
)

// Bodies larger than this are cut off. Municipal event pages are far
// smaller; anything bigger is a misconfigured URL.
const maxBodyBytes = 10 << 20

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Renderer executes a page in a browser-like environment and returns the
// resulting HTML. No implementation ships with the pipeline; sources
// marked as requiring rendering fall back to the plain fetch when none
// is installed.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Client fetches pages over HTTP.
type Client struct {
	http        *http.Client
	userAgent   string
	maxAttempts int
	renderer    Renderer
}

// New creates a Client. maxAttempts counts the first try plus retries;
// values below one mean a single attempt.
func New(userAgent string, timeout time.Duration, maxAttempts int) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		maxAttempts: maxAttempts,
	}
}

// SetRenderer installs a JavaScript renderer used by Page for sources
// that require one.
func (c *Client) SetRenderer(r Renderer) {
	c.renderer = r
}

// HTTPClient exposes the underlying client so API callers share its
// timeout settings.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Get fetches a URL and returns the response body as a string. Transport
// errors, 429 and 5xx responses are retried with exponential backoff;
// other non-200 statuses fail immediately.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var body string
	op := func() error {
		s, err := c.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = s
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		metrics.FetchRetries.Inc()
		log.Debug().Err(err).Str("url", url).Dur("wait", wait).Msg("retrying fetch")
	})
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}

// Page fetches a source page, routing through the renderer when the
// source requires one and a renderer is installed.
func (c *Client) Page(ctx context.Context, url string, requiresRender bool) (string, error) {
	if requiresRender {
		if c.renderer != nil {
			html, err := c.renderer.Render(ctx, url)
			if err != nil {
				return "", fmt.Errorf("rendering %s: %w", url, err)
			}
			return html, nil
		}
		log.Warn().Str("url", url).Msg("source requires rendering but no renderer is installed, fetching plain HTML")
	}
	return c.Get(ctx, url)
}

func (c *Client) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9,fr-CH;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return "", fmt.Errorf("reading body: %w", err)
		}
		return string(b), nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", &StatusError{StatusCode: resp.StatusCode}
	default:
		return "", backoff.Permanent(&StatusError{StatusCode: resp.StatusCode})
	}
}
