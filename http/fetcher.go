// Package http provides an HTTP-based implementation of docdex.Fetcher for
// retrieving documentation pages, plus per-domain rate limiting.
package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/docdex/docdex"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// defaultUserAgent identifies the engine to documentation hosts.
const defaultUserAgent = "docdex (+https://github.com/docdex/docdex)"

// Ensure Fetcher implements docdex.Fetcher at compile time.
var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page content from URLs using plain HTTP requests.
// Documentation pages served by intersphinx-publishing sites are static,
// so no JavaScript rendering is involved.
type Fetcher struct {
	client    *http.Client
	limiter   docdex.DomainLimiter
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithLimiter applies per-domain rate limiting before each request.
func WithLimiter(l docdex.DomainLimiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch retrieves the content at the given URL. Connectivity failures and
// non-2xx responses are reported as EUNAVAILABLE; a 404 is ENOTFOUND.
func (f *Fetcher) Fetch(ctx context.Context, rawurl string) (string, error) {
	if f.limiter != nil {
		u, err := url.Parse(rawurl)
		if err != nil {
			return "", docdex.Errorf(docdex.EINVALID, "invalid URL %q", rawurl)
		}
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return "", docdex.Errorf(docdex.EINVALID, "invalid URL %q", rawurl)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", docdex.Errorf(docdex.EUNAVAILABLE, "fetching %s: %v", rawurl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", docdex.Errorf(docdex.ENOTFOUND, "page %s not found", rawurl)
	}
	if resp.StatusCode != http.StatusOK {
		return "", docdex.Errorf(docdex.EUNAVAILABLE, "fetching %s: HTTP %d", rawurl, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", docdex.Errorf(docdex.EUNAVAILABLE, "reading %s: %v", rawurl, err)
	}

	return string(body), nil
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
