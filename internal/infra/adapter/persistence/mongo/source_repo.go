package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/domain/entity"
	"webcrawler/internal/repository"
)

// SourceRepo is the Mongo-backed repository.SourceRepository, grounded on
// original_source's create_source/get_source/list_sources/update_source/
// delete_source. CompareAndSetStatus and ReconcileStaleRunning ensure status
// transitions that matter for concurrency safety go through a single atomic
// update (UpdateOne / UpdateMany) filtered on the expected current status, so
// a crashed worker can never leave two crawls racing the same Source.
type SourceRepo struct {
	coll      *mongo.Collection
	documents *mongo.Collection
	stats     *mongo.Collection
}

func NewSourceRepo(db *DB) repository.SourceRepository {
	return &SourceRepo{
		coll:      db.db.Collection(collSources),
		documents: db.db.Collection(collDocuments),
		stats:     db.db.Collection(collCrawlStats),
	}
}

func (r *SourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	var b bsonSource
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("SourceRepo.Get: FindOne: %w", err)
	}
	return b.toEntity(), nil
}

func (r *SourceRepo) List(ctx context.Context, projectID string, limit, offset int) ([]*entity.Source, error) {
	filter := bson.M{}
	if projectID != "" {
		filter["project_id"] = projectID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(int64(offset)).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("SourceRepo.List: Find: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	sources := make([]*entity.Source, 0, limit)
	for cursor.Next(ctx) {
		var b bsonSource
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("SourceRepo.List: Decode: %w", err)
		}
		sources = append(sources, b.toEntity())
	}
	return sources, cursor.Err()
}

// ListActive returns every enabled Source, the scheduler's LoadAllSources bootstrap query.
func (r *SourceRepo) ListActive(ctx context.Context) ([]*entity.Source, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"crawl_config.enabled": true})
	if err != nil {
		return nil, fmt.Errorf("SourceRepo.ListActive: Find: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	sources := make([]*entity.Source, 0, 64)
	for cursor.Next(ctx) {
		var b bsonSource
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("SourceRepo.ListActive: Decode: %w", err)
		}
		sources = append(sources, b.toEntity())
	}
	return sources, cursor.Err()
}

func (r *SourceRepo) Create(ctx context.Context, s *entity.Source) error {
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	if s.Status == "" {
		s.Status = entity.StatusIdle
	}
	if _, err := r.coll.InsertOne(ctx, toBSONSource(s)); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("SourceRepo.Create: %w: %s", crawlerr.ErrInvalidConfig, s.URL)
		}
		return fmt.Errorf("SourceRepo.Create: InsertOne: %w", err)
	}
	return nil
}

func (r *SourceRepo) Update(ctx context.Context, s *entity.Source) error {
	s.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, toBSONSource(s))
	if err != nil {
		return fmt.Errorf("SourceRepo.Update: ReplaceOne: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("SourceRepo.Update: %w: %s", crawlerr.ErrNotFound, s.ID)
	}
	return nil
}

// Delete removes s and cascades to its Documents and CrawlStats, matching
// original_source's delete_source.
func (r *SourceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.documents.DeleteMany(ctx, bson.M{"source_id": id}); err != nil {
		return fmt.Errorf("SourceRepo.Delete: delete documents: %w", err)
	}
	if _, err := r.stats.DeleteMany(ctx, bson.M{"source_id": id}); err != nil {
		return fmt.Errorf("SourceRepo.Delete: delete crawl_stats: %w", err)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("SourceRepo.Delete: DeleteOne: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("SourceRepo.Delete: %w: %s", crawlerr.ErrNotFound, id)
	}
	return nil
}

func (r *SourceRepo) CompareAndSetStatus(ctx context.Context, id string, expectedStatus, newStatus entity.Status) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(expectedStatus)},
		bson.M{"$set": bson.M{"status": string(newStatus), "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("SourceRepo.CompareAndSetStatus: UpdateOne: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *SourceRepo) TouchLastCrawled(ctx context.Context, id string, t time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_crawled_at": t}})
	if err != nil {
		return fmt.Errorf("SourceRepo.TouchLastCrawled: UpdateOne: %w", err)
	}
	return nil
}

// ReconcileStaleRunning moves every Source stuck in "running" whose
// LastCrawledAt is before olderThan (or unset) to "failed", and returns how
// many it moved. It is cmd/worker's startup sweep: a process crash mid-run
// otherwise leaves the status permanently wrong, since nothing else ever
// clears it.
func (r *SourceRepo) ReconcileStaleRunning(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{
			"status": string(entity.StatusRunning),
			"$or": bson.A{
				bson.M{"last_crawled_at": bson.M{"$lt": olderThan}},
				bson.M{"last_crawled_at": nil},
			},
		},
		bson.M{"$set": bson.M{
			"status":     string(entity.StatusFailed),
			"last_error": "reconciled: source left running after process restart",
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("SourceRepo.ReconcileStaleRunning: UpdateMany: %w", err)
	}
	return int(res.ModifiedCount), nil
}
