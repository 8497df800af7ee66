package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/domain/entity"
	"webcrawler/internal/repository"
)

// CrawlStatsRepo is the Mongo-backed repository.CrawlStatsRepository,
// grounded on original_source's save_crawl_stats/get_source_stats and
// indexed by (source_id, started_at desc).
type CrawlStatsRepo struct {
	coll *mongo.Collection
}

func NewCrawlStatsRepo(db *DB) repository.CrawlStatsRepository {
	return &CrawlStatsRepo{coll: db.db.Collection(collCrawlStats)}
}

func (r *CrawlStatsRepo) Create(ctx context.Context, stats *entity.CrawlStats) error {
	if _, err := r.coll.InsertOne(ctx, toBSONCrawlStats(stats)); err != nil {
		return fmt.Errorf("CrawlStatsRepo.Create: InsertOne: %w", err)
	}
	return nil
}

func (r *CrawlStatsRepo) Update(ctx context.Context, stats *entity.CrawlStats) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": stats.ID}, toBSONCrawlStats(stats))
	if err != nil {
		return fmt.Errorf("CrawlStatsRepo.Update: ReplaceOne: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("CrawlStatsRepo.Update: %w: %s", crawlerr.ErrNotFound, stats.ID)
	}
	return nil
}

func (r *CrawlStatsRepo) LatestForSource(ctx context.Context, sourceID string) (*entity.CrawlStats, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})
	var b bsonCrawlStats
	err := r.coll.FindOne(ctx, bson.M{"source_id": sourceID}, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("CrawlStatsRepo.LatestForSource: FindOne: %w", err)
	}
	return b.toEntity(), nil
}

func (r *CrawlStatsRepo) ListForSource(ctx context.Context, sourceID string, limit int) ([]*entity.CrawlStats, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"source_id": sourceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("CrawlStatsRepo.ListForSource: Find: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	out := make([]*entity.CrawlStats, 0, limit)
	for cursor.Next(ctx) {
		var b bsonCrawlStats
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("CrawlStatsRepo.ListForSource: Decode: %w", err)
		}
		out = append(out, b.toEntity())
	}
	return out, cursor.Err()
}
