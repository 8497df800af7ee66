package crawl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/domain/entity"
	"webcrawler/internal/infra/blocking"
	"webcrawler/internal/infra/fetcher"
	"webcrawler/internal/infra/parser"
	"webcrawler/internal/text"
)

// crawlSocial performs the single platform-appropriate fetch-and-parse for a
// social Source. The Reddit/Twitter/YouTube parsers
// re-fetch their own listing internally and ignore the bytes passed here;
// only LinkedIn scrapes the page the manager retrieves.
func (m *Manager) crawlSocial(ctx context.Context, src *entity.Source, p parser.Parser, opts *fetcher.FetchOptions, stats *entity.CrawlStats) error {
	res, err := m.fetcher.Fetch(ctx, src.URL, opts)
	if err != nil {
		stats.PagesFailed++
		return &crawlerr.NetworkFailure{URL: src.URL, Err: err}
	}
	stats.BytesDownloaded += int64(len(res.Body))

	if blocked := blocking.Detect(res.Body, res.StatusCode, src.URL); blocked.Blocked {
		return blockedErr(blocked)
	}

	results, err := p.Parse(ctx, res.Body, src.URL)
	if err != nil {
		stats.PagesFailed++
		stats.AddError(err.Error())
		return nil
	}

	m.storeAll(ctx, src, results, stats)
	return nil
}

// crawlTraditional implements the visit-queue crawl loop: a page fetch or
// parse failure increments pages_failed and continues to the
// next queued URL, but a blocked response aborts the whole run immediately
// without storing anything further.
func (m *Manager) crawlTraditional(ctx context.Context, src *entity.Source, p parser.Parser, opts *fetcher.FetchOptions, delay time.Duration, stats *entity.CrawlStats) error {
	toVisit := []string{src.URL}
	visited := make(map[string]bool)

	for len(toVisit) > 0 && stats.PagesCrawled < src.Config.MaxHits {
		next := toVisit[0]
		toVisit = toVisit[1:]

		if visited[next] {
			continue
		}
		visited[next] = true

		if err := m.pacer.wait(ctx, src.ID, delay); err != nil {
			return err
		}

		res, err := m.fetcher.Fetch(ctx, next, opts)
		if err != nil {
			stats.PagesFailed++
			stats.AddError(fmt.Sprintf("%s: %v", next, err))
			continue
		}
		stats.BytesDownloaded += int64(len(res.Body))

		if blocked := blocking.Detect(res.Body, res.StatusCode, next); blocked.Blocked {
			return blockedErr(blocked)
		}

		results, err := p.Parse(ctx, res.Body, next)
		if err != nil {
			stats.PagesFailed++
			stats.AddError(fmt.Sprintf("%s: %v", next, err))
			continue
		}

		m.storeAll(ctx, src, results, stats)

		if src.Config.FollowLinks {
			for _, r := range results {
				if nextPage, ok := r.Custom["next_page"].(string); ok && nextPage != "" && !visited[nextPage] {
					toVisit = append(toVisit, nextPage)
				}
			}
		}
	}

	return nil
}

// blockedErr classifies a blocking.Result into the crawlerr.Blocked kind the
// detector's documented precedence implies: http_block > captcha > ip_ban.
func blockedErr(r blocking.Result) error {
	kind := crawlerr.BlockKindHTTP
	switch {
	case r.HTTPBlock != "":
		kind = crawlerr.BlockKindHTTP
	case r.CaptchaDetected:
		kind = crawlerr.BlockKindCaptcha
	case r.IPBanDetected:
		kind = crawlerr.BlockKindIPBan
	}
	return &crawlerr.Blocked{Kind: kind, Reason: r.BlockType}
}

// storeAll persists results up to the Source's remaining max_hits budget for
// this run.
func (m *Manager) storeAll(ctx context.Context, src *entity.Source, results []parser.ParserResult, stats *entity.CrawlStats) {
	remaining := src.Config.MaxHits - stats.PagesCrawled
	if remaining <= 0 {
		return
	}
	if len(results) > remaining {
		results = results[:remaining]
	}

	stored := 0
	for _, r := range results {
		switch err := m.storeOne(ctx, src, r); {
		case err == nil:
			stats.PagesCrawled++
			stored++
		case errors.Is(err, crawlerr.ErrDuplicateDocument):
			// Already present: not a failure, not a new document either.
		default:
			stats.PagesFailed++
			stats.AddError(err.Error())
		}
	}
	if m.metrics != nil && stored > 0 {
		m.metrics.RecordDocumentsStored(stored)
	}
}

// storeOne cleans r's text, extracts keywords, and writes one Document.
func (m *Manager) storeOne(ctx context.Context, src *entity.Source, r parser.ParserResult) error {
	cleaned := text.Clean(r.RawContent)
	keywords := text.ExtractKeywords(cleaned, topKeywordsPerDocument, nil)
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		terms = append(terms, k.Term)
	}

	url := r.URL
	if url == "" {
		url = src.URL
	}

	doc := &entity.Document{
		ID:                  uuid.NewString(),
		URL:                 url,
		SourceID:            src.ID,
		ContentType:         src.ContentType,
		RawContent:          r.RawContent,
		CleanedText:         cleaned,
		CrawlConfigSnapshot: src.Config,
		CrawledAt:           time.Now(),
		Metadata: entity.DocumentMetadata{
			Title:       r.Title,
			Author:      r.Author,
			PublishDate: r.PublishDate,
			Language:    r.Language,
			WordCount:   len(strings.Fields(cleaned)),
			Keywords:    terms,
			Custom:      r.Custom,
		},
	}

	if err := doc.Validate(); err != nil {
		return &crawlerr.StorageError{Op: "validate", Err: err, PerDocument: true}
	}

	if err := m.documents.Create(ctx, doc); err != nil {
		if errors.Is(err, crawlerr.ErrDuplicateDocument) {
			return crawlerr.ErrDuplicateDocument
		}
		return &crawlerr.StorageError{Op: "create", Err: err, PerDocument: true}
	}
	return nil
}
