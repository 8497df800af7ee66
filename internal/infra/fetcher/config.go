// Package fetcher implements the Polite Fetcher: an HTTP client that gates
// requests on robots.txt, paces requests per host, and retries transient
// failures with backoff.
package fetcher

import (
	"fmt"
	"time"
)

// Config holds the configuration for a Fetcher instance. Per-source
// overrides (entity.RetryPolicy) are applied on top of these process-wide
// defaults inside the crawl manager.
type Config struct {
	// UserAgent is sent on every request and used when evaluating
	// robots.txt rules.
	UserAgent string

	// RequestTimeout bounds a single HTTP attempt.
	RequestTimeout time.Duration

	// CrawlDelay is the minimum inter-request gap enforced per host when a
	// Source does not specify its own rate_limit_per_minute.
	CrawlDelay time.Duration

	// MaxRetries is the default retry budget for network errors and
	// retryable status codes.
	MaxRetries int

	// BackoffFactor scales the exponential backoff: backoff_factor * 2^(n-1) seconds.
	BackoffFactor float64

	// DenyPrivateIPs blocks SSRF-style requests to loopback/private/link-local
	// addresses. Should always be true in production.
	DenyPrivateIPs bool

	// MaxRedirects bounds the number of redirects a single fetch follows.
	MaxRedirects int
}

// DefaultConfig returns production-ready defaults, mirroring the "security
// always on, sane performance defaults" posture of the teacher's
// ContentFetchConfig.DefaultConfig.
func DefaultConfig() Config {
	return Config{
		UserAgent:      "webcrawler/1.0 (+politeness-enabled)",
		RequestTimeout: 30 * time.Second,
		CrawlDelay:     1 * time.Second,
		MaxRetries:     3,
		BackoffFactor:  1.0,
		DenyPrivateIPs: true,
		MaxRedirects:   5,
	}
}

// Validate checks the configuration for internally-consistent, safe values.
func (c *Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.CrawlDelay < 0 {
		return fmt.Errorf("crawl delay must be non-negative, got %v", c.CrawlDelay)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 20 {
		return fmt.Errorf("max retries must be between 0 and 20, got %d", c.MaxRetries)
	}
	if c.BackoffFactor <= 0 {
		return fmt.Errorf("backoff factor must be positive, got %f", c.BackoffFactor)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}
