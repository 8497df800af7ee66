package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// FeedParser parses RSS/Atom feeds with mmcdole/gofeed, the same library
// internal/infra/scraper.RSSFetcher wraps for the teacher's own feed
// ingestion, generalised here to emit one ParserResult per entry
// (original_source's rss_parser.py parse_entries/_parse_entry).
type FeedParser struct {
	fp *gofeed.Parser
}

// NewFeedParser builds a FeedParser with a fresh gofeed.Parser.
func NewFeedParser() *FeedParser {
	return &FeedParser{fp: gofeed.NewParser()}
}

// Parse fans a feed document out into one ParserResult per <item>/<entry>,
// matching the original's per-entry dict model rather than collapsing the
// whole feed into a single document.
func (p *FeedParser) Parse(_ context.Context, raw []byte, sourceURL string) ([]ParserResult, error) {
	feed, err := p.fp.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parser.FeedParser.Parse: %w", err)
	}

	results := make([]ParserResult, 0, len(feed.Items))
	for _, item := range feed.Items {
		results = append(results, entryToResult(item, sourceURL))
	}
	return results, nil
}

func entryToResult(item *gofeed.Item, sourceURL string) ParserResult {
	link := item.Link
	if link == "" {
		link = sourceURL
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	author := ""
	if item.Author != nil {
		author = item.Author.Name
	} else if len(item.Authors) > 0 {
		author = item.Authors[0].Name
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	custom := map[string]any{"guid": item.GUID}
	if len(item.Categories) > 0 {
		custom["categories"] = item.Categories
	}

	return ParserResult{
		URL:         link,
		Title:       item.Title,
		Author:      author,
		PublishDate: published,
		RawContent:  content,
		Custom:      custom,
	}
}
