package repository

import (
	"context"

	"webcrawler/internal/domain/entity"
)

// CrawlStatsRepository persists one record per Crawl Manager run.
type CrawlStatsRepository interface {
	Create(ctx context.Context, stats *entity.CrawlStats) error
	Update(ctx context.Context, stats *entity.CrawlStats) error
	LatestForSource(ctx context.Context, sourceID string) (*entity.CrawlStats, error)
	ListForSource(ctx context.Context, sourceID string, limit int) ([]*entity.CrawlStats, error)
}
