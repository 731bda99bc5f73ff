// Package httpx provides the retrying, rate-limited fetch primitive consumed
// by every resolver.
package httpx

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/time/rate"
)

const (
	defaultRetries     = 3
	defaultMinInterval = 1 * time.Second
	defaultTimeout     = 30 * time.Second
	maxBackoff         = 8 * time.Second

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Retries     int
	MinInterval time.Duration
	Timeout     time.Duration
	UserAgent   string
	Headers     map[string]string
}

// Client performs polite HTTP GETs: every attempt waits for the rate limiter
// first (even the very first one), failures back off exponentially, and an
// HTTP status >= 400 counts as a retryable failure rather than a distinct
// error class. The wall-clock cost of attempts x sleeps is deliberate.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	retries   int
	userAgent string
	headers   map[string]string
	sleep     func(ctx context.Context, d time.Duration) error
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func NewClient(opts Options) *Client {
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaultMinInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	// Drain the initial token so even the first request waits the minimum
	// interval. Sources ban fast clients regardless of attempt number.
	limiter.Allow()

	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		limiter:   limiter,
		retries:   opts.Retries,
		userAgent: opts.UserAgent,
		headers:   opts.Headers,
		sleep:     sleepCtx,
	}
}

// Get fetches url, retrying up to the configured attempt count. Exhausting
// retries returns an error; it never panics and never aborts the run.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.doGet(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		slog.Warn("HTTP fetch failed", "url", url, "attempt", attempt, "retries", c.retries, "error", err)

		if attempt == c.retries {
			break
		}
		backoff := min(maxBackoff, time.Duration(1<<attempt)*time.Second)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetch %s: retries exhausted: %w", url, lastErr)
}

func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8,pl;q=0.6,es;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, br, zstd")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return readBodyDecode(resp)
}

// readBodyDecode reads the response body and decompresses it based on
// Content-Encoding (gzip, br, zstd).
func readBodyDecode(resp *http.Response) ([]byte, error) {
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch {
	case strings.Contains(enc, "br"):
		return io.ReadAll(brotli.NewReader(resp.Body))
	case strings.Contains(enc, "zstd"):
		r, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case strings.Contains(enc, "gzip"):
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return io.ReadAll(resp.Body)
	}
}
