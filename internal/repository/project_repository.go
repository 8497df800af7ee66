package repository

import (
	"context"

	"webcrawler/internal/domain/entity"
)

// ProjectRepository persists Project aggregates. Deleting a Project cascades
// to its Sources (and, transitively, their Documents and CrawlStats) per
// entity.Project's doc comment.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Project, error)
	Create(ctx context.Context, project *entity.Project) error
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id string) error
}
