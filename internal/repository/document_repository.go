package repository

import (
	"context"
	"time"

	"webcrawler/internal/domain/entity"
)

// DocumentFilter narrows List/Search/Count to a subset of the collection.
// Zero values are "no filter" for that field.
type DocumentFilter struct {
	SourceID    string
	ContentType entity.ContentType
	From        *time.Time
	To          *time.Time
}

// SearchQuery is the input to DocumentRepository.Search: free-text keywords
// plus the same filters List supports, paginated.
type SearchQuery struct {
	Keywords string
	Filter   DocumentFilter
	Limit    int
	Offset   int
}

// SearchResult is one ranked hit from DocumentRepository.Search. Snippet is
// plain text; HighlightedSnippet wraps matched keywords in <mark> tags
//).
type SearchResult struct {
	DocumentID         string
	URL                string
	Title              string
	Snippet            string
	HighlightedSnippet string
	RelevanceScore     float64
	SourceID           string
	ContentType        entity.ContentType
	CrawledAt          time.Time
}

// DocumentRepository persists Document records with dedup-on-insert
// semantics: inserting a Document whose (URL, SourceID) pair already exists
// is a no-op, reported via ErrDuplicateDocument rather than a driver-level
// panic.
type DocumentRepository interface {
	Get(ctx context.Context, id string) (*entity.Document, error)
	Exists(ctx context.Context, url, sourceID string) (bool, error)
	Create(ctx context.Context, doc *entity.Document) error
	List(ctx context.Context, filter DocumentFilter, limit, offset int) ([]*entity.Document, error)
	Count(ctx context.Context, filter DocumentFilter) (int64, error)
	Delete(ctx context.Context, id string) error

	// Search runs the boolean keyword query described in spec §4.7/§8 and
	// returns results ordered by relevance score, most relevant first.
	Search(ctx context.Context, query SearchQuery) ([]SearchResult, error)

	// GlobalStats aggregates total document/source counts and per-content-type
	// and per-source breakdowns for the operator-facing stats surface
	// (grounded on original_source's get_global_stats).
	GlobalStats(ctx context.Context) (GlobalStats, error)
}

// GlobalStats is the aggregate view returned by DocumentRepository.GlobalStats.
type GlobalStats struct {
	TotalSources    int64
	TotalDocuments  int64
	ByContentType   map[entity.ContentType]int64
	TopSourceCounts []SourceDocumentCount
}

// SourceDocumentCount pairs a source with its document count, used in the
// "top sources by document volume" ranking.
type SourceDocumentCount struct {
	SourceID string
	Count    int64
}
