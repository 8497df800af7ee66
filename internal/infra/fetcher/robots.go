package fetcher

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsCache lazily fetches and caches /robots.txt per origin. If the file
// cannot be retrieved, the origin is treated as permissive and that decision
// is cached too. It is process-wide and safe for concurrent use.
type robotsCache struct {
	mu      sync.Mutex
	entries map[string]*robotstxt.RobotsData // nil value means "permissive, no robots.txt"

	client    *http.Client
	userAgent string
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		entries:   make(map[string]*robotstxt.RobotsData),
		client:    client,
		userAgent: userAgent,
	}
}

// allowed reports whether userAgent may fetch path under the given origin,
// fetching and caching /robots.txt for that origin on first use.
func (c *robotsCache) allowed(ctx context.Context, originURL, path string) (bool, error) {
	data, err := c.get(ctx, originURL)
	if err != nil {
		// Robots.txt could not be retrieved at all: treat as permissive.
		return true, nil
	}
	if data == nil {
		return true, nil
	}
	return data.TestAgent(path, c.userAgent), nil
}

func (c *robotsCache) get(ctx context.Context, originURL string) (*robotstxt.RobotsData, error) {
	c.mu.Lock()
	if data, ok := c.entries[originURL]; ok {
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.fetch(ctx, originURL)
	if err != nil {
		// Cache the permissive decision so we don't retry every call.
		c.mu.Lock()
		c.entries[originURL] = nil
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.entries[originURL] = data
	c.mu.Unlock()
	return data, nil
}

func (c *robotsCache) fetch(ctx context.Context, originURL string) (*robotstxt.RobotsData, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, originURL+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		// No robots.txt (or inaccessible): permissive per spec §4.1.
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
