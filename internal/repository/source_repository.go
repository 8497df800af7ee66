package repository

import (
	"context"
	"time"

	"webcrawler/internal/domain/entity"
)

// SourceRepository persists Source aggregates and the subset of status
// transitions the scheduler and crawl manager need to drive directly
// on source-status CAS).
type SourceRepository interface {
	Get(ctx context.Context, id string) (*entity.Source, error)
	List(ctx context.Context, projectID string, limit, offset int) ([]*entity.Source, error)
	ListActive(ctx context.Context) ([]*entity.Source, error)
	Create(ctx context.Context, source *entity.Source) error
	Update(ctx context.Context, source *entity.Source) error
	Delete(ctx context.Context, id string) error

	// CompareAndSetStatus atomically moves a Source from expectedStatus to
	// newStatus, returning false (no error) if the Source's current status
	// was not expectedStatus — the caller's signal that another worker
	// already claimed the run.
	CompareAndSetStatus(ctx context.Context, id string, expectedStatus, newStatus entity.Status) (bool, error)

	// TouchLastCrawled records that a run of the Source started, stamping
	// LastCrawledAt, which ReconcileStaleRunning compares against olderThan.
	TouchLastCrawled(ctx context.Context, id string, t time.Time) error

	// ReconcileStaleRunning moves every Source left in StatusRunning with a
	// LastCrawledAt older than olderThan back to StatusFailed. It exists for
	// the startup reconciliation sweep described in SPEC_FULL.md §9 decision
	// (a): a process crash mid-run otherwise leaves the Source permanently
	// stuck at "running", since nothing else would ever clear it.
	ReconcileStaleRunning(ctx context.Context, olderThan time.Time) (int, error)
}
