package fetcher

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostPacer enforces a minimum inter-request gap per host using one token-bucket rate.Limiter per
// host, sized so at most one request drains the bucket per delay interval.
// It is process-wide and safe for concurrent use across crawl-manager
// workers.
type hostPacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newHostPacer() *hostPacer {
	return &hostPacer{limiters: make(map[string]*rate.Limiter)}
}

// wait blocks, if necessary, until the host's bucket yields a token for the
// given delay, a per-host gap rather than a global one.
func (p *hostPacer) wait(ctx context.Context, rawURL string, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	host := hostOf(rawURL)
	limiter := p.limiterFor(host, delay)

	return limiter.Wait(ctx)
}

// limiterFor returns the host's limiter, creating one sized for delay on
// first use. If the configured delay changes between calls (a per-source
// override taking effect), the limiter's rate is updated in place.
func (p *hostPacer) limiterFor(host string, delay time.Duration) *rate.Limiter {
	limit := rate.Every(delay)

	p.mu.Lock()
	defer p.mu.Unlock()

	limiter, ok := p.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(limit, 1)
		p.limiters[host] = limiter
		return limiter
	}
	if limiter.Limit() != limit {
		limiter.SetLimit(limit)
	}
	return limiter
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
