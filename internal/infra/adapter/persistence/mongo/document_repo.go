package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/domain/entity"
	"webcrawler/internal/repository"
)

// snippetMaxLength is the default window width for search snippets (spec
// §4.7's "Search" rule; original_source's get_highlighted_snippet default).
const snippetMaxLength = 200

// DocumentRepo is the Mongo-backed repository.DocumentRepository, grounded
// on original_source's create_document/get_document/list_documents/
// count_documents/search_documents/get_global_stats.
type DocumentRepo struct {
	coll    *mongo.Collection
	sources *mongo.Collection
}

func NewDocumentRepo(db *DB) repository.DocumentRepository {
	return &DocumentRepo{coll: db.db.Collection(collDocuments), sources: db.db.Collection(collSources)}
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*entity.Document, error) {
	var b bsonDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("DocumentRepo.Get: FindOne: %w", err)
	}
	return b.toEntity(), nil
}

func (r *DocumentRepo) Exists(ctx context.Context, url, sourceID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"url": url, "source_id": sourceID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("DocumentRepo.Exists: CountDocuments: %w", err)
	}
	return n > 0, nil
}

// Create inserts doc. A duplicate (url, source_id) pair is not an error at
// the storage layer — it is reported as
// crawlerr.ErrDuplicateDocument so the crawl manager can treat it as a
// no-op rather than a failure.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.CrawledAt.IsZero() {
		doc.CrawledAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, toBSONDocument(doc)); err != nil {
		if isDuplicateKey(err) {
			return crawlerr.ErrDuplicateDocument
		}
		return fmt.Errorf("DocumentRepo.Create: InsertOne: %w", err)
	}
	return nil
}

func filterToBSON(f repository.DocumentFilter) bson.M {
	q := bson.M{}
	if f.SourceID != "" {
		q["source_id"] = f.SourceID
	}
	if f.ContentType != "" {
		q["content_type"] = string(f.ContentType)
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = *f.From
		}
		if f.To != nil {
			rng["$lte"] = *f.To
		}
		q["crawled_at"] = rng
	}
	return q
}

func (r *DocumentRepo) List(ctx context.Context, filter repository.DocumentFilter, limit, offset int) ([]*entity.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "crawled_at", Value: -1}}).SetSkip(int64(offset)).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filterToBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("DocumentRepo.List: Find: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	docs := make([]*entity.Document, 0, limit)
	for cursor.Next(ctx) {
		var b bsonDocument
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("DocumentRepo.List: Decode: %w", err)
		}
		docs = append(docs, b.toEntity())
	}
	return docs, cursor.Err()
}

func (r *DocumentRepo) Count(ctx context.Context, filter repository.DocumentFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filterToBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("DocumentRepo.Count: CountDocuments: %w", err)
	}
	return n, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("DocumentRepo.Delete: DeleteOne: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("DocumentRepo.Delete: %w: %s", crawlerr.ErrNotFound, id)
	}
	return nil
}

// Search runs the keyword query over the cleaned_text full-text index and
// ranks by Mongo's textScore metadata, the same shape as original_source's
// search_documents. query.Keywords is expected to already be
// in Mongo $text search syntax — the usecase/search package is responsible
// for turning a boolean AND/OR query into that syntax.
func (r *DocumentRepo) Search(ctx context.Context, query repository.SearchQuery) ([]repository.SearchResult, error) {
	filter := filterToBSON(query.Filter)
	filter["$text"] = bson.M{"$search": query.Keywords}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSkip(int64(query.Offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("DocumentRepo.Search: Find: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []repository.SearchResult
	for cursor.Next(ctx) {
		var hit struct {
			bsonDocument `bson:",inline"`
			Score        float64 `bson:"score"`
		}
		if err := cursor.Decode(&hit); err != nil {
			return nil, fmt.Errorf("DocumentRepo.Search: Decode: %w", err)
		}
		results = append(results, repository.SearchResult{
			DocumentID:         hit.ID,
			URL:                hit.URL,
			Title:              hit.Metadata.Title,
			Snippet:            snippet(hit.CleanedText, query.Keywords, snippetMaxLength),
			HighlightedSnippet: highlightedSnippet(hit.CleanedText, query.Keywords, snippetMaxLength),
			RelevanceScore:     hit.Score,
			SourceID:           hit.SourceID,
			ContentType:        entity.ContentType(hit.ContentType),
			CrawledAt:          hit.CrawledAt,
		})
	}
	return results, cursor.Err()
}

// snippetTerms splits a $text-syntax query back into plain lowercase terms
// for snippet-window location, stripping the "|" OR-disjunction operator
// and minus-prefixed exclusions.
func snippetTerms(queryKeywords string) []string {
	raw := strings.FieldsFunc(queryKeywords, func(r rune) bool { return r == '|' || r == ' ' })
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(t, `"`)
		if t == "" || strings.HasPrefix(t, "-") {
			continue
		}
		terms = append(terms, strings.ToLower(t))
	}
	return terms
}

// snippet locates the earliest occurrence of any query term in text and
// extracts a maxLength-character window centred on it, ellipsising if
// truncated; with no match it returns the head of the text.
func snippet(text, queryKeywords string, maxLength int) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	bestPos := -1
	for _, term := range snippetTerms(queryKeywords) {
		if pos := strings.Index(lower, term); pos != -1 && (bestPos == -1 || pos < bestPos) {
			bestPos = pos
		}
	}

	if bestPos == -1 {
		if len(text) <= maxLength {
			return text
		}
		return text[:maxLength] + "..."
	}

	start := bestPos - maxLength/2
	if start < 0 {
		start = 0
	}
	end := bestPos + maxLength/2
	if end > len(text) {
		end = len(text)
	}

	out := text[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out = out + "..."
	}
	return out
}

// highlightedSnippet wraps each matched term (case-insensitive, length >= 2)
// in <mark> tags within the same window snippet computes, grounded on
// original_source's get_highlighted_snippet.
func highlightedSnippet(text, queryKeywords string, maxLength int) string {
	base := snippet(text, queryKeywords, maxLength)
	if base == "" {
		return ""
	}
	for _, term := range snippetTerms(queryKeywords) {
		if len(term) < 2 {
			continue
		}
		base = highlightTerm(base, term)
	}
	return base
}

// highlightTerm wraps every case-insensitive occurrence of term in base with
// <mark>...</mark>, preserving the original casing of the matched text.
func highlightTerm(base, term string) string {
	lowerBase := strings.ToLower(base)
	lowerTerm := strings.ToLower(term)

	var sb strings.Builder
	i := 0
	for {
		pos := strings.Index(lowerBase[i:], lowerTerm)
		if pos == -1 {
			sb.WriteString(base[i:])
			break
		}
		pos += i
		sb.WriteString(base[i:pos])
		sb.WriteString("<mark>")
		sb.WriteString(base[pos : pos+len(term)])
		sb.WriteString("</mark>")
		i = pos + len(term)
	}
	return sb.String()
}

// GlobalStats aggregates totals and per-content-type/per-source breakdowns,
// grounded on original_source's get_global_stats aggregation pipelines.
func (r *DocumentRepo) GlobalStats(ctx context.Context) (repository.GlobalStats, error) {
	totalSources, err := r.sources.CountDocuments(ctx, bson.M{})
	if err != nil {
		return repository.GlobalStats{}, fmt.Errorf("DocumentRepo.GlobalStats: count sources: %w", err)
	}
	totalDocuments, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return repository.GlobalStats{}, fmt.Errorf("DocumentRepo.GlobalStats: count documents: %w", err)
	}

	byContentType := make(map[entity.ContentType]int64)
	ctCursor, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$content_type", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return repository.GlobalStats{}, fmt.Errorf("DocumentRepo.GlobalStats: aggregate content_type: %w", err)
	}
	defer func() { _ = ctCursor.Close(ctx) }()
	for ctCursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := ctCursor.Decode(&row); err != nil {
			return repository.GlobalStats{}, fmt.Errorf("DocumentRepo.GlobalStats: decode content_type row: %w", err)
		}
		byContentType[entity.ContentType(row.ID)] = row.Count
	}

	srcCursor, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$source_id", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
		bson.M{"$limit": 10},
	})
	if err != nil {
		return repository.GlobalStats{}, fmt.Errorf("DocumentRepo.GlobalStats: aggregate top sources: %w", err)
	}
	defer func() { _ = srcCursor.Close(ctx) }()
	var topSources []repository.SourceDocumentCount
	for srcCursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := srcCursor.Decode(&row); err != nil {
			return repository.GlobalStats{}, fmt.Errorf("DocumentRepo.GlobalStats: decode top-source row: %w", err)
		}
		topSources = append(topSources, repository.SourceDocumentCount{SourceID: row.ID, Count: row.Count})
	}

	return repository.GlobalStats{
		TotalSources:    totalSources,
		TotalDocuments:  totalDocuments,
		ByContentType:   byContentType,
		TopSourceCounts: topSources,
	}, nil
}
