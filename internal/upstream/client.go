package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the upstream client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RawTTL    time.Duration // TTL for raw station payloads

	// RequestsPerSecond bounds calls to the upstream host; 0 disables
	// limiting.
	RequestsPerSecond float64

	// MaxAttempts bounds retries of transient failures; 0 = default.
	MaxAttempts int
}

// Client fetches documents over HTTP with ETag / Last-Modified
// revalidation. Raw bodies are kept in a TTL cache; a 304 refreshes the
// validators and serves the cached body.
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	cache   *TTLCache
	retry   retryConfig

	mu         sync.Mutex
	validators map[string]validator
}

type validator struct {
	etag         string
	lastModified string
}

// NewClient creates a client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.RawTTL == 0 {
		opts.RawTTL = 6 * time.Hour
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "stationglobe/1.0"
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	retry := defaultRetryConfig()
	if opts.MaxAttempts > 0 {
		retry.maxAttempts = opts.MaxAttempts
	}
	return &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    limiter,
		cache:      NewTTLCache(),
		retry:      retry,
		validators: make(map[string]validator),
	}
}

// Cache exposes the client's TTL cache so callers can layer derived
// results (slices, comparisons) next to the raw bodies.
func (c *Client) Cache() *TTLCache { return c.cache }

// FetchStationRaw returns the raw historical-weather payload for one
// station, served from cache while fresh and revalidated conditionally
// once stale.
func (c *Client) FetchStationRaw(ctx context.Context, stationID string) ([]byte, error) {
	u := fmt.Sprintf("%s/historical_weather?station=%s",
		strings.TrimRight(c.opts.BaseURL, "/"), url.QueryEscape(stationID))
	return c.cache.GetOrLoad(ctx, "raw:"+stationID, c.opts.RawTTL, func(ctx context.Context) ([]byte, error) {
		return c.fetch(ctx, u, "raw:"+stationID)
	})
}

// Fetch retrieves an arbitrary document. Sources beginning with http(s)
// are requested over the network with conditional revalidation; anything
// else is read from the local filesystem, so outline files and station
// lists can be mixed freely between URLs and paths.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, eris.Wrapf(err, "upstream: read %s", source)
		}
		return data, nil
	}
	return c.cache.GetOrLoad(ctx, "doc:"+source, c.opts.RawTTL, func(ctx context.Context) ([]byte, error) {
		return c.fetch(ctx, source, "doc:"+source)
	})
}

// fetch performs one cached GET, retrying transient failures with
// backoff.
func (c *Client) fetch(ctx context.Context, u, cacheKey string) ([]byte, error) {
	return withRetry(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.fetchOnce(ctx, u, cacheKey)
	})
}

func (c *Client) fetchOnce(ctx context.Context, u, cacheKey string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "upstream: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "upstream: build request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	c.mu.Lock()
	if v, ok := c.validators[cacheKey]; ok {
		if v.etag != "" {
			req.Header.Set("If-None-Match", v.etag)
		}
		if v.lastModified != "" {
			req.Header.Set("If-Modified-Since", v.lastModified)
		}
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "upstream: GET %s", u)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		// Validators held; the stale cached body is still authoritative.
		// The cache entry may have expired, so look past the TTL.
		c.cache.mu.RLock()
		e, ok := c.cache.entries[cacheKey]
		c.cache.mu.RUnlock()
		if !ok {
			return nil, eris.Errorf("upstream: 304 for %s with no cached body", u)
		}
		c.cache.Set(cacheKey, e.data, c.opts.RawTTL)
		zap.L().Debug("upstream: revalidated", zap.String("url", u))
		return e.data, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{url: u, code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "upstream: read body of %s", u)
	}

	c.mu.Lock()
	c.validators[cacheKey] = validator{
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	c.mu.Unlock()

	return body, nil
}
