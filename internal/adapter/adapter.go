// ABOUTME: Adapter capability set and the ordered registry that dispatches seeds
// ABOUTME: Provides the shared HTTP client builder with proxy policy and timeout

package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rssrs/rssrs/internal/models"
)

const userAgent = "rssrs/1.0 (feed aggregator)"

// MaxResponseSize caps how much of a response body is read.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// Adapter converts one source format into articles.
type Adapter interface {
	// Supports reports whether this adapter claims the seed URL.
	Supports(rawURL string) bool

	// Parse converts a fetched payload into articles for the seed.
	Parse(data []byte, seedID int64) ([]models.Article, error)

	// Fetch retrieves the seed over the given client and returns its
	// articles. Most adapters compose FetchBody with their own Parse.
	Fetch(ctx context.Context, client *http.Client, seed *models.Seed) ([]models.Article, error)
}

// Registry holds adapters in priority order: host-specific adapters come
// before the universal RSS adapter, and the first match wins.
type Registry []Adapter

// DefaultRegistry returns the built-in adapters in dispatch order.
func DefaultRegistry() Registry {
	return Registry{
		&T66yAdapter{},
		&RSSAdapter{},
	}
}

// ForURL returns the first adapter claiming the URL, or nil when none does.
func (r Registry) ForURL(rawURL string) Adapter {
	for _, a := range r {
		if a.Supports(rawURL) {
			return a
		}
	}
	return nil
}

// NewClient builds the HTTP client adapters fetch with. The proxy policy
// comes from the proxy setting: "none" disables proxying, "http" routes
// through the configured host:port, anything else falls back to system
// resolution. The timeout comes from the generic setting.
func NewClient(proxy models.ProxySettings, generic models.GenericSettings) (*http.Client, error) {
	transport := &http.Transport{}
	switch proxy.Type {
	case models.ProxyNone:
		transport.Proxy = nil
	case models.ProxyHTTP:
		proxyURL, err := url.Parse(fmt.Sprintf("http://%s:%d", proxy.Host, proxy.Port))
		if err != nil {
			return nil, fmt.Errorf("parse proxy address: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	default:
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(generic.Timeout) * time.Second,
	}, nil
}

// FetchBody GETs a URL and returns the full response body. Responses over
// MaxResponseSize are rejected rather than truncated.
func FetchBody(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response too large (exceeds %d bytes)", MaxResponseSize)
	}
	return body, nil
}
