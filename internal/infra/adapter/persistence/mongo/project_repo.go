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

// ProjectRepo is the Mongo-backed repository.ProjectRepository, grounded on
// original_source's create_project/get_project/list_projects/update_project/
// delete_project. Deleting a Project cascades to its Sources and, via
// SourceRepo.Delete semantics, their Documents and CrawlStats.
type ProjectRepo struct {
	coll    *mongo.Collection
	sources *mongo.Collection
}

func NewProjectRepo(db *DB) repository.ProjectRepository {
	return &ProjectRepo{coll: db.db.Collection(collProjects), sources: db.db.Collection(collSources)}
}

func (r *ProjectRepo) Get(ctx context.Context, id string) (*entity.Project, error) {
	var b bsonProject
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ProjectRepo.Get: FindOne: %w", err)
	}
	return b.toEntity(), nil
}

func (r *ProjectRepo) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(int64(offset)).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ProjectRepo.List: Find: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	projects := make([]*entity.Project, 0, limit)
	for cursor.Next(ctx) {
		var b bsonProject
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("ProjectRepo.List: Decode: %w", err)
		}
		projects = append(projects, b.toEntity())
	}
	return projects, cursor.Err()
}

func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, toBSONProject(p)); err != nil {
		return fmt.Errorf("ProjectRepo.Create: InsertOne: %w", err)
	}
	return nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	p.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, toBSONProject(p))
	if err != nil {
		return fmt.Errorf("ProjectRepo.Update: ReplaceOne: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("ProjectRepo.Update: %w: %s", crawlerr.ErrNotFound, p.ID)
	}
	return nil
}

// Delete removes p and cascades to its Sources (and, transitively, their
// Documents and CrawlStats via mongo.SourceRepo's own cascade), matching
// original_source's delete_project.
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	cursor, err := r.sources.Find(ctx, bson.M{"project_id": id}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return fmt.Errorf("ProjectRepo.Delete: Find sources: %w", err)
	}
	var sourceIDs []string
	for cursor.Next(ctx) {
		var s struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&s); err != nil {
			_ = cursor.Close(ctx)
			return fmt.Errorf("ProjectRepo.Delete: Decode source id: %w", err)
		}
		sourceIDs = append(sourceIDs, s.ID)
	}
	_ = cursor.Close(ctx)

	documents := r.sources.Database().Collection(collDocuments)
	stats := r.sources.Database().Collection(collCrawlStats)
	for _, sid := range sourceIDs {
		if _, err := documents.DeleteMany(ctx, bson.M{"source_id": sid}); err != nil {
			return fmt.Errorf("ProjectRepo.Delete: delete documents for source %s: %w", sid, err)
		}
		if _, err := stats.DeleteMany(ctx, bson.M{"source_id": sid}); err != nil {
			return fmt.Errorf("ProjectRepo.Delete: delete crawl_stats for source %s: %w", sid, err)
		}
	}
	if _, err := r.sources.DeleteMany(ctx, bson.M{"project_id": id}); err != nil {
		return fmt.Errorf("ProjectRepo.Delete: delete sources: %w", err)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("ProjectRepo.Delete: DeleteOne: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("ProjectRepo.Delete: %w: %s", crawlerr.ErrNotFound, id)
	}
	return nil
}
