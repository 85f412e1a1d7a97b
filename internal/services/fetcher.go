package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/phono/internal/shared"
	"golang.org/x/time/rate"
)

// UserAgent is sent with every media request.
const UserAgent = "phono/1.0"

// HTTPFetcher fetches media over http and https.
type HTTPFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	headers    *shared.RequestHeaders
}

// NewHTTPFetcher creates a fetcher using client (http.DefaultClient when nil).
//
// A nil limiter disables rate limiting.
func NewHTTPFetcher(client *http.Client, limiter *rate.Limiter) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{httpClient: client, limiter: limiter}
}

// NewHTTPFetcherFromConfig builds a fetcher honoring the cache timeout, request
// rate and headers file.
//
// The returned fetcher is usable even when err is set; it then sends no extra headers.
func NewHTTPFetcherFromConfig(cfg shared.CacheConfig) (*HTTPFetcher, error) {
	client := &http.Client{Timeout: cfg.FetchTimeout()}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	f := NewHTTPFetcher(client, limiter)

	if cfg.HeadersFile == "" {
		return f, nil
	}
	headers, err := shared.LoadRequestHeaders(cfg.HeadersFile)
	if err != nil {
		return f, err
	}
	return f.WithHeaders(headers), nil
}

// WithHeaders sends headers with every request.
func (f *HTTPFetcher) WithHeaders(headers *shared.RequestHeaders) *HTTPFetcher {
	f.headers = headers
	return f
}

// Fetch issues a GET for locator and returns the body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnsupportedLocator, err)
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedLocator, u.Scheme)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", shared.ErrFetchFailed, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	f.headers.Apply(req.Header)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrFetchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", shared.ErrFetchFailed, u.Redacted(), resp.Status)
	}

	return resp.Body, nil
}
