package entity

import "time"

// CrawlStats is a per-run record of one Crawl Manager execution against one
// Source. It is persisted regardless of whether the run completed,
// failed, or was blocked.
type CrawlStats struct {
	ID              string
	SourceID        string
	PagesCrawled    int
	PagesFailed     int
	BytesDownloaded int64
	Duration        time.Duration
	StartedAt       time.Time
	CompletedAt     *time.Time
	Errors          []string
}

// AddError appends a per-page error message to the run's error list. Per-page
// errors never abort the run — only a per-run fatal failure does,
// and that is handled by the caller transitioning the Source to failed.
func (c *CrawlStats) AddError(msg string) {
	c.Errors = append(c.Errors, msg)
}

// Finish stamps CompletedAt and computes Duration from StartedAt.
func (c *CrawlStats) Finish(now time.Time) {
	c.CompletedAt = &now
	c.Duration = now.Sub(c.StartedAt)
}
