// Package search implements the Search engine: translating a
// keyword query with optional boolean mode and filters into a
// repository.DocumentRepository.Search call, grounded on
// original_source/src/processing/search.py's SearchEngine.search and
// search_with_boolean.
package search

import (
	"context"
	"fmt"
	"strings"

	"webcrawler/internal/domain/entity"
	"webcrawler/internal/repository"
)

// Mode selects how multiple keywords combine. AND is the Store's default
//; OR rewrites the query with the index's disjunction operator.
type Mode string

const (
	ModeAND Mode = "AND"
	ModeOR  Mode = "OR"
)

const defaultLimit = 20

// Query is the Search engine's input: free keywords, a boolean mode, and
// the same filters the Store API accepts.
type Query struct {
	Keywords    string
	Mode        Mode
	SourceID    string
	ContentType string
	Filter      repository.DocumentFilter
	Limit       int
	Offset      int
}

// Engine is the Search engine: it owns no storage of
// its own and reads entirely through a DocumentRepository.
type Engine struct {
	documents repository.DocumentRepository
}

func New(documents repository.DocumentRepository) *Engine {
	return &Engine{documents: documents}
}

// Search executes q against the Store and returns ranked, snippeted results
//.
func (e *Engine) Search(ctx context.Context, q Query) ([]repository.SearchResult, error) {
	filter := q.Filter
	if q.SourceID != "" {
		filter.SourceID = q.SourceID
	}
	if q.ContentType != "" {
		filter.ContentType = entity.ContentType(q.ContentType)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	sq := repository.SearchQuery{
		Keywords: rewriteKeywords(q.Keywords, q.Mode),
		Filter:   filter,
		Limit:    limit,
		Offset:   q.Offset,
	}

	results, err := e.documents.Search(ctx, sq)
	if err != nil {
		return nil, fmt.Errorf("search.Engine.Search: %w", err)
	}
	return results, nil
}

// rewriteKeywords applies the boolean-mode rule: AND is the index's
// native multi-word behaviour (terms left whitespace-joined); OR rewrites
// the query by joining terms with the disjunction operator "|", matching
// original_source's search_with_boolean OR branch exactly.
func rewriteKeywords(keywords string, mode Mode) string {
	if mode != ModeOR {
		return keywords
	}
	terms := strings.Fields(keywords)
	return strings.Join(terms, " | ")
}
