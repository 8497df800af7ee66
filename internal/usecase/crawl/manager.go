// Package crawl implements operation crawl_source(source_id): fetch,
// blocking detection, parse, clean, keyword extraction, and store for one
// Source, grounded on internal/usecase/fetch.Service's
// dependency wiring and original_source's crawler/crawl_manager.py
// CrawlManager.crawl_source. The run's CrawlStats are persisted through the
// CrawlStatsRepository; CrawlSource returns only an error, not the stats.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/domain/entity"
	"webcrawler/internal/infra/fetcher"
	"webcrawler/internal/infra/parser"
	"webcrawler/internal/repository"
)

const topKeywordsPerDocument = 10

// Fetcher is the subset of *fetcher.Fetcher the manager depends on.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts *fetcher.FetchOptions) (*fetcher.FetchResult, error)
}

// Metrics is the narrow set of crawl-domain counters the manager reports,
// kept as an interface so this package never imports the observability
// registry directly.
type Metrics interface {
	RecordCrawlRun(status string, duration time.Duration)
	RecordDocumentsStored(n int)
	RecordBlocked()
}

// Manager orchestrates a Source's crawl run end to end.
type Manager struct {
	fetcher   Fetcher
	parsers   map[entity.ContentType]parser.Parser
	sources   repository.SourceRepository
	documents repository.DocumentRepository
	stats     repository.CrawlStatsRepository
	pacer     *sourcePacer
	metrics   Metrics
	logger    *slog.Logger
}

// NewManager builds a Manager. metrics may be nil.
func NewManager(
	fetcher Fetcher,
	parsers map[entity.ContentType]parser.Parser,
	sources repository.SourceRepository,
	documents repository.DocumentRepository,
	stats repository.CrawlStatsRepository,
	metrics Metrics,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		fetcher:   fetcher,
		parsers:   parsers,
		sources:   sources,
		documents: documents,
		stats:     stats,
		pacer:     newSourcePacer(),
		metrics:   metrics,
		logger:    logger,
	}
}

// CrawlSource runs one crawl of sourceID. It claims the
// Source from idle/completed/failed into running via CAS so a
// scheduler-triggered run and an operator-triggered run of the same source
// can never execute concurrently); a failed
// claim returns crawlerr.ErrAlreadyRunning without touching the Source.
func (m *Manager) CrawlSource(ctx context.Context, sourceID string) error {
	src, err := m.sources.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("crawl.Manager.CrawlSource: %w", err)
	}
	if src == nil {
		return fmt.Errorf("crawl.Manager.CrawlSource: %w: %s", crawlerr.ErrNotFound, sourceID)
	}

	if !m.claim(ctx, src) {
		return crawlerr.ErrAlreadyRunning
	}

	now := time.Now()
	if err := m.sources.TouchLastCrawled(ctx, src.ID, now); err != nil {
		m.logger.Warn("failed to stamp last_crawl", slog.String("source_id", src.ID), slog.Any("error", err))
	}

	stats := &entity.CrawlStats{ID: uuid.NewString(), SourceID: src.ID, StartedAt: now}
	if err := m.stats.Create(ctx, stats); err != nil {
		m.logger.Warn("failed to persist initial crawl stats", slog.String("source_id", src.ID), slog.Any("error", err))
	}

	m.logger.Info("crawl starting", slog.String("source_id", src.ID), slog.String("name", src.Name))

	runErr := m.run(ctx, src, stats)

	stats.Finish(time.Now())
	if err := m.stats.Update(ctx, stats); err != nil {
		m.logger.Warn("failed to persist final crawl stats", slog.String("source_id", src.ID), slog.Any("error", err))
	}

	m.finish(ctx, src, stats, runErr)

	if m.metrics != nil {
		m.metrics.RecordCrawlRun(string(src.Status), stats.Duration)
		if src.Status == entity.StatusBlocked {
			m.metrics.RecordBlocked()
		}
	}

	m.logger.Info("crawl finished",
		slog.String("source_id", src.ID),
		slog.String("status", string(src.Status)),
		slog.Int("pages_crawled", stats.PagesCrawled),
		slog.Int("pages_failed", stats.PagesFailed),
		slog.Duration("duration", stats.Duration),
	)

	return runErr
}

// claim attempts to move src into running from each status CanTransition
// allows a run to start from, returning true on the first that succeeds.
func (m *Manager) claim(ctx context.Context, src *entity.Source) bool {
	for _, from := range []entity.Status{entity.StatusIdle, entity.StatusCompleted, entity.StatusFailed} {
		ok, err := m.sources.CompareAndSetStatus(ctx, src.ID, from, entity.StatusRunning)
		if err != nil {
			m.logger.Error("claim check failed", slog.String("source_id", src.ID), slog.Any("error", err))
			continue
		}
		if ok {
			src.Status = entity.StatusRunning
			return true
		}
	}
	return false
}

// finish transitions src to its final status and persists it. A *crawlerr.Blocked run error takes the source to blocked; any
// other non-nil error takes it to failed; nil takes it to completed.
func (m *Manager) finish(ctx context.Context, src *entity.Source, stats *entity.CrawlStats, runErr error) {
	final := entity.StatusCompleted
	if runErr != nil {
		final = entity.StatusFailed
		var blocked *crawlerr.Blocked
		if errors.As(runErr, &blocked) {
			final = entity.StatusBlocked
		}
		src.LastError = runErr.Error()
	} else {
		src.LastError = ""
	}

	src.TotalDocuments += int64(stats.PagesCrawled)
	if err := m.sources.Update(ctx, src); err != nil {
		m.logger.Error("failed to update source after crawl", slog.String("source_id", src.ID), slog.Any("error", err))
	}
	if _, err := m.sources.CompareAndSetStatus(ctx, src.ID, entity.StatusRunning, final); err != nil {
		m.logger.Error("failed to finalize source status", slog.String("source_id", src.ID), slog.Any("error", err))
	}
	src.Status = final
}

func (m *Manager) run(ctx context.Context, src *entity.Source, stats *entity.CrawlStats) error {
	p, ok := m.parsers[src.ContentType]
	if !ok {
		return fmt.Errorf("crawl.Manager.run: no parser registered for content type %s", src.ContentType)
	}

	opts := fetchOptionsFor(src)

	if entity.SocialContentTypes[src.ContentType] {
		return m.crawlSocial(ctx, src, p, opts, stats)
	}
	return m.crawlTraditional(ctx, src, p, opts, paceDelay(src.Config.RateLimitPerMinute), stats)
}

// fetchOptionsFor derives the fetcher's per-call options from the Source's
// own RetryPolicy, letting each Source override the process-wide retry
// defaults.
func fetchOptionsFor(src *entity.Source) *fetcher.FetchOptions {
	return &fetcher.FetchOptions{
		MaxRetries:    src.Config.RetryPolicy.MaxRetries,
		BackoffFactor: src.Config.RetryPolicy.BackoffFactor,
		Timeout:       src.Config.RetryPolicy.Timeout,
	}
}

// paceDelay converts a requests-per-minute budget into the inter-request
// delay the traditional loop's pacer enforces.
func paceDelay(rateLimitPerMinute int) time.Duration {
	if rateLimitPerMinute <= 0 {
		return 0
	}
	return time.Minute / time.Duration(rateLimitPerMinute)
}
