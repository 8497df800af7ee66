package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawler/internal/repository"
)

type fakeDocumentRepo struct {
	repository.DocumentRepository
	lastQuery repository.SearchQuery
	results   []repository.SearchResult
}

func (f *fakeDocumentRepo) Search(ctx context.Context, query repository.SearchQuery) ([]repository.SearchResult, error) {
	f.lastQuery = query
	return f.results, nil
}

func TestSearch_DefaultModeLeavesKeywordsAsIs(t *testing.T) {
	fake := &fakeDocumentRepo{results: []repository.SearchResult{{DocumentID: "d1"}}}
	engine := New(fake)

	results, err := engine.Search(context.Background(), Query{Keywords: "python crawler"})

	require.NoError(t, err)
	assert.Equal(t, "python crawler", fake.lastQuery.Keywords)
	assert.Equal(t, defaultLimit, fake.lastQuery.Limit)
	assert.Len(t, results, 1)
}

func TestSearch_ORModeJoinsWithPipe(t *testing.T) {
	fake := &fakeDocumentRepo{}
	engine := New(fake)

	_, err := engine.Search(context.Background(), Query{Keywords: "python rust", Mode: ModeOR})

	require.NoError(t, err)
	assert.Equal(t, "python | rust", fake.lastQuery.Keywords)
}

func TestSearch_FiltersPassThrough(t *testing.T) {
	fake := &fakeDocumentRepo{}
	engine := New(fake)

	_, err := engine.Search(context.Background(), Query{
		Keywords:    "go",
		SourceID:    "src-1",
		ContentType: "html",
		Limit:       5,
		Offset:      10,
	})

	require.NoError(t, err)
	assert.Equal(t, "src-1", fake.lastQuery.Filter.SourceID)
	assert.EqualValues(t, "html", fake.lastQuery.Filter.ContentType)
	assert.Equal(t, 5, fake.lastQuery.Limit)
	assert.Equal(t, 10, fake.lastQuery.Offset)
}
