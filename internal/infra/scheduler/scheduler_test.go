package scheduler

import (
	"context"
	"log/slog"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawler/internal/domain/entity"
)

type fakeSourceRepo struct {
	active []*entity.Source
}

func (f *fakeSourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) { return nil, nil }
func (f *fakeSourceRepo) List(ctx context.Context, projectID string, limit, offset int) ([]*entity.Source, error) {
	return nil, nil
}
func (f *fakeSourceRepo) ListActive(ctx context.Context) ([]*entity.Source, error) { return f.active, nil }
func (f *fakeSourceRepo) Create(ctx context.Context, source *entity.Source) error  { return nil }
func (f *fakeSourceRepo) Update(ctx context.Context, source *entity.Source) error  { return nil }
func (f *fakeSourceRepo) Delete(ctx context.Context, id string) error              { return nil }
func (f *fakeSourceRepo) CompareAndSetStatus(ctx context.Context, id string, expected, next entity.Status) (bool, error) {
	return true, nil
}
func (f *fakeSourceRepo) TouchLastCrawled(ctx context.Context, id string, t time.Time) error {
	return nil
}
func (f *fakeSourceRepo) ReconcileStaleRunning(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_AddAndListJobs(t *testing.T) {
	var calls int32
	crawl := func(ctx context.Context, sourceID string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	repo := &fakeSourceRepo{}
	s := New(crawl, repo, noopLogger())

	src := &entity.Source{ID: "src-1", Config: entity.CrawlConfig{Frequency: "*/5 * * * *"}}
	require.NoError(t, s.AddSourceJob(src))

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "src-1", jobs[0].SourceID)
	assert.Equal(t, "crawl_src-1", jobs[0].JobID)
	assert.False(t, jobs[0].Paused)
}

func TestScheduler_PauseSkipsRun(t *testing.T) {
	var calls int32
	crawl := func(ctx context.Context, sourceID string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	repo := &fakeSourceRepo{}
	s := New(crawl, repo, noopLogger())
	src := &entity.Source{ID: "src-1", Config: entity.CrawlConfig{Frequency: "*/5 * * * *"}}
	require.NoError(t, s.AddSourceJob(src))
	require.NoError(t, s.PauseSourceJob("src-1"))

	s.runGuarded("src-1")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	require.NoError(t, s.ResumeSourceJob("src-1"))
	s.runGuarded("src-1")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestScheduler_TriggerSourceCrawl_RejectsOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	crawl := func(ctx context.Context, sourceID string) error {
		close(started)
		<-release
		return nil
	}

	repo := &fakeSourceRepo{}
	s := New(crawl, repo, noopLogger())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.TriggerSourceCrawl(context.Background(), "src-1")
	}()

	<-started
	err := s.TriggerSourceCrawl(context.Background(), "src-1")
	assert.Error(t, err)

	close(release)
	assert.NoError(t, <-errCh)
}

func TestScheduler_LoadAllSources(t *testing.T) {
	repo := &fakeSourceRepo{active: []*entity.Source{
		{ID: "a", Config: entity.CrawlConfig{Frequency: "0 * * * *"}},
		{ID: "b", Config: entity.CrawlConfig{Frequency: "0 0 * * *"}},
	}}
	s := New(func(ctx context.Context, sourceID string) error { return nil }, repo, noopLogger())

	require.NoError(t, s.LoadAllSources(context.Background()))
	assert.Len(t, s.ListJobs(), 2)
}
