package crawl

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sourcePacer enforces one Source's rate_limit_per_minute against its own
// outbound fetches inside the traditional loop, the same
// one-token-bucket-per-key shape internal/infra/fetcher.hostPacer uses for
// per-host pacing, keyed on source ID instead of host.
type sourcePacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newSourcePacer() *sourcePacer {
	return &sourcePacer{limiters: make(map[string]*rate.Limiter)}
}

// wait blocks, if necessary, until sourceID's bucket yields a token for the
// given delay. delay <= 0 disables pacing (an unconfigured rate limit).
func (p *sourcePacer) wait(ctx context.Context, sourceID string, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	return p.limiterFor(sourceID, delay).Wait(ctx)
}

// limiterFor returns sourceID's limiter, creating one sized for delay on
// first use and updating its rate in place if a later call passes a
// different delay (a config edit taking effect mid-run).
func (p *sourcePacer) limiterFor(sourceID string, delay time.Duration) *rate.Limiter {
	limit := rate.Every(delay)

	p.mu.Lock()
	defer p.mu.Unlock()

	limiter, ok := p.limiters[sourceID]
	if !ok {
		limiter = rate.NewLimiter(limit, 1)
		p.limiters[sourceID] = limiter
		return limiter
	}
	if limiter.Limit() != limit {
		limiter.SetLimit(limit)
	}
	return limiter
}
