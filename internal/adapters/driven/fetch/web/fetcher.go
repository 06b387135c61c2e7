// Package web fetches pages over plain HTTP for the document loader.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.WebFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Second
	DefaultBurst   = 2

	// maxBodySize caps how much of a page is read.
	maxBodySize = 10 << 20
)

// Config configures the fetcher.
type Config struct {
	// Timeout bounds each request (default: 10s).
	Timeout time.Duration

	// UserAgent is sent with every request (default: a desktop browser).
	UserAgent string

	// RequestsPerSecond throttles fetches. Zero disables throttling.
	RequestsPerSecond float64

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Fetcher retrieves pages with a browser User-Agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *RateLimiter
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond, DefaultBurst),
	}
}

// Fetch GETs url and returns the decoded body. Non-2xx responses are
// errors wrapping domain.ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*driven.FetchResult, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	logger.Debug("GET %s -> %d (%s)", url, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode == http.StatusTooManyRequests {
		f.limiter.RecordRateLimited(resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetchFailed, url, resp.StatusCode)
	}

	// Pages declare their encoding in headers or meta tags; decode to UTF-8.
	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrFetchFailed, url, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrFetchFailed, url, err)
	}

	return &driven.FetchResult{
		URL:        url,
		HTML:       strings.ToValidUTF8(string(data), ""),
		StatusCode: resp.StatusCode,
		Method:     driven.FetchMethodHTTP,
	}, nil
}
