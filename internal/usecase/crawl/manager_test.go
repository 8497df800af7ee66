package crawl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/domain/entity"
	"webcrawler/internal/infra/fetcher"
	"webcrawler/internal/infra/parser"
	"webcrawler/internal/repository"
)

// fakeSourceRepo is an in-memory SourceRepository backing a single Source,
// enough to exercise CrawlSource's CAS claim/finish sequence without a
// database.
type fakeSourceRepo struct {
	src            *entity.Source
	updates        []entity.Status
	reconcileCalls int
}

func (f *fakeSourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	if f.src == nil || f.src.ID != id {
		return nil, nil
	}
	cp := *f.src
	return &cp, nil
}
func (f *fakeSourceRepo) List(ctx context.Context, projectID string, limit, offset int) ([]*entity.Source, error) {
	return nil, nil
}
func (f *fakeSourceRepo) ListActive(ctx context.Context) ([]*entity.Source, error) { return nil, nil }
func (f *fakeSourceRepo) Create(ctx context.Context, source *entity.Source) error   { return nil }
func (f *fakeSourceRepo) Update(ctx context.Context, source *entity.Source) error {
	f.src.LastError = source.LastError
	f.src.TotalDocuments = source.TotalDocuments
	return nil
}
func (f *fakeSourceRepo) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeSourceRepo) CompareAndSetStatus(ctx context.Context, id string, expected, next entity.Status) (bool, error) {
	if f.src.Status != expected {
		return false, nil
	}
	f.src.Status = next
	f.updates = append(f.updates, next)
	return true, nil
}
func (f *fakeSourceRepo) TouchLastCrawled(ctx context.Context, id string, t time.Time) error {
	f.src.LastCrawledAt = &t
	return nil
}
func (f *fakeSourceRepo) ReconcileStaleRunning(ctx context.Context, olderThan time.Time) (int, error) {
	f.reconcileCalls++
	return 0, nil
}

type fakeDocumentRepo struct {
	repository.DocumentRepository
	stored    []*entity.Document
	duplicate map[string]bool
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if f.duplicate != nil && f.duplicate[doc.URL] {
		return crawlerr.ErrDuplicateDocument
	}
	f.stored = append(f.stored, doc)
	return nil
}

type fakeStatsRepo struct {
	repository.CrawlStatsRepository
	created []*entity.CrawlStats
	updated []*entity.CrawlStats
}

func (f *fakeStatsRepo) Create(ctx context.Context, s *entity.CrawlStats) error {
	f.created = append(f.created, s)
	return nil
}
func (f *fakeStatsRepo) Update(ctx context.Context, s *entity.CrawlStats) error {
	f.updated = append(f.updated, s)
	return nil
}

type fakeFetcher struct {
	responses map[string]*fetcher.FetchResult
	err       error
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string, opts *fetcher.FetchOptions) (*fetcher.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	res, ok := f.responses[rawURL]
	if !ok {
		return &fetcher.FetchResult{URL: rawURL, StatusCode: 200, Body: []byte("")}, nil
	}
	return res, nil
}

// htmlParserStub is a minimal parser.Parser that extracts a <title> and
// passes the raw body through unchanged, enough to exercise the manager's
// store path without pulling in the real HTML parser's goquery dependency.
type htmlParserStub struct{}

var titleRegex = regexp.MustCompile(`(?is)<title>(.*?)</title>`)

func (htmlParserStub) Parse(ctx context.Context, raw []byte, sourceURL string) ([]parser.ParserResult, error) {
	title := ""
	if m := titleRegex.FindSubmatch(raw); m != nil {
		title = string(m[1])
	}
	return []parser.ParserResult{{
		URL:        sourceURL,
		Title:      title,
		RawContent: string(raw),
	}}, nil
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSource(maxHits int) *entity.Source {
	return &entity.Source{
		ID:          "src-1",
		Name:        "Test Source",
		URL:         "https://example.com",
		ContentType: entity.ContentTypeHTML,
		Status:      entity.StatusIdle,
		Config: entity.CrawlConfig{
			MaxHits:            maxHits,
			RateLimitPerMinute: 300, // fast pacing so tests run quickly
			RetryPolicy:        entity.RetryPolicy{MaxRetries: 0, BackoffFactor: 1, Timeout: time.Second},
		},
	}
}

func TestCrawlSource_CompletesAndStoresOneDocument(t *testing.T) {
	src := newTestSource(5)
	sources := &fakeSourceRepo{src: src}
	documents := &fakeDocumentRepo{}
	stats := &fakeStatsRepo{}
	fetch := &fakeFetcher{responses: map[string]*fetcher.FetchResult{
		"https://example.com": {URL: "https://example.com", StatusCode: 200, Body: []byte("<html><head><title>Test Page</title></head><body>Welcome</body></html>")},
	}}
	parsers := map[entity.ContentType]parser.Parser{entity.ContentTypeHTML: htmlParserStub{}}

	m := NewManager(fetch, parsers, sources, documents, stats, nil, noopLogger())

	err := m.CrawlSource(context.Background(), "src-1")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, src.Status)
	require.Len(t, documents.stored, 1)
	assert.Equal(t, "Test Page", documents.stored[0].Metadata.Title)
	assert.Contains(t, documents.stored[0].CleanedText, "Welcome")
	require.Len(t, stats.updated, 1)
	assert.Equal(t, 1, stats.updated[0].PagesCrawled)
}

func TestCrawlSource_RejectsOverlappingRun(t *testing.T) {
	src := newTestSource(5)
	src.Status = entity.StatusRunning
	sources := &fakeSourceRepo{src: src}
	documents := &fakeDocumentRepo{}
	stats := &fakeStatsRepo{}
	fetch := &fakeFetcher{}
	parsers := map[entity.ContentType]parser.Parser{entity.ContentTypeHTML: htmlParserStub{}}

	m := NewManager(fetch, parsers, sources, documents, stats, nil, noopLogger())

	err := m.CrawlSource(context.Background(), "src-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, crawlerr.ErrAlreadyRunning))
	assert.Empty(t, documents.stored)
}

func TestCrawlSource_BlockedResponseAbortsRunWithoutStoring(t *testing.T) {
	src := newTestSource(5)
	sources := &fakeSourceRepo{src: src}
	documents := &fakeDocumentRepo{}
	stats := &fakeStatsRepo{}
	fetch := &fakeFetcher{responses: map[string]*fetcher.FetchResult{
		"https://example.com": {URL: "https://example.com", StatusCode: 429, Body: []byte("rate limited")},
	}}
	parsers := map[entity.ContentType]parser.Parser{entity.ContentTypeHTML: htmlParserStub{}}

	m := NewManager(fetch, parsers, sources, documents, stats, nil, noopLogger())

	err := m.CrawlSource(context.Background(), "src-1")

	require.Error(t, err)
	var blocked *crawlerr.Blocked
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, entity.StatusBlocked, src.Status)
	assert.Contains(t, src.LastError, "429")
	assert.Empty(t, documents.stored)
}

func TestCrawlSource_DuplicateDocumentIsNotAFailure(t *testing.T) {
	src := newTestSource(5)
	sources := &fakeSourceRepo{src: src}
	documents := &fakeDocumentRepo{duplicate: map[string]bool{"https://example.com": true}}
	stats := &fakeStatsRepo{}
	fetch := &fakeFetcher{responses: map[string]*fetcher.FetchResult{
		"https://example.com": {URL: "https://example.com", StatusCode: 200, Body: []byte("<html><body>hi</body></html>")},
	}}
	parsers := map[entity.ContentType]parser.Parser{entity.ContentTypeHTML: htmlParserStub{}}

	m := NewManager(fetch, parsers, sources, documents, stats, nil, noopLogger())

	err := m.CrawlSource(context.Background(), "src-1")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, src.Status)
	assert.Empty(t, documents.stored)
	assert.Equal(t, 0, stats.updated[0].PagesCrawled)
	assert.Equal(t, 0, stats.updated[0].PagesFailed)
}

func TestCrawlSource_NetworkFailureIncrementsPagesFailedAndCompletes(t *testing.T) {
	src := newTestSource(5)
	sources := &fakeSourceRepo{src: src}
	documents := &fakeDocumentRepo{}
	stats := &fakeStatsRepo{}
	fetch := &fakeFetcher{err: errors.New("connection refused")}
	parsers := map[entity.ContentType]parser.Parser{entity.ContentTypeHTML: htmlParserStub{}}

	m := NewManager(fetch, parsers, sources, documents, stats, nil, noopLogger())

	err := m.CrawlSource(context.Background(), "src-1")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, src.Status)
	assert.Equal(t, 1, stats.updated[0].PagesFailed)
}

func TestCrawlSource_MissingSourceReturnsNotFound(t *testing.T) {
	sources := &fakeSourceRepo{}
	documents := &fakeDocumentRepo{}
	stats := &fakeStatsRepo{}
	fetch := &fakeFetcher{}
	parsers := map[entity.ContentType]parser.Parser{entity.ContentTypeHTML: htmlParserStub{}}

	m := NewManager(fetch, parsers, sources, documents, stats, nil, noopLogger())

	err := m.CrawlSource(context.Background(), "does-not-exist")

	require.Error(t, err)
	assert.True(t, errors.Is(err, crawlerr.ErrNotFound))
}
