// Package parser turns the raw bytes a Fetcher retrieves for a Source into
// one or more normalised ParserResults. Each entity.ContentType
// has exactly one Parser implementation; Factory.CreateParsers is a
// content-type-keyed dispatch table, the same shape the teacher's website
// scraper factory uses for its own scrapers.
package parser

import (
	"context"
	"time"

	"webcrawler/internal/domain/entity"
	"webcrawler/internal/infra/fetcher"
)

// ParserResult is one normalised page/entry/post extracted from a single
// Parse call. A Feed or social parser returns one ParserResult per item; an
// HTML, PDF, TXT, or LinkedIn parser always returns exactly one.
type ParserResult struct {
	URL         string
	Title       string
	Author      string
	PublishDate *time.Time
	RawContent  string
	Language    string
	Custom      map[string]any
}

// Parser extracts ParserResults from the raw bytes fetched for sourceURL.
// Implementations never treat "nothing extracted" as an error: an empty
// result slice with a nil error means the page legitimately had no content
// worth keeping.
type Parser interface {
	Parse(ctx context.Context, raw []byte, sourceURL string) ([]ParserResult, error)
}

// Fetcher is the subset of *fetcher.Fetcher the social parsers use to issue
// their own follow-up GETs (a mirror URL, a subreddit listing, a channel
// feed). Declared as an interface here so parser tests can substitute a
// fake without standing up a real Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts *fetcher.FetchOptions) (*fetcher.FetchResult, error)
}

// Factory builds the full set of Parsers, wiring the social parsers to a
// shared Fetcher the way scraper.ScraperFactory wires its website scrapers
// to a shared *http.Client.
type Factory struct {
	fetcher Fetcher
}

// NewFactory builds a Factory. fetcher is used by the Twitter, Reddit, and
// YouTube parsers to retrieve the public mirror/listing pages they parse
// (the LinkedIn parser is handed it but parses the bytes it is given); it
// may be nil only in tests that exercise non-social parsers.
func NewFactory(fetcher Fetcher) *Factory {
	return &Factory{fetcher: fetcher}
}

// CreateParsers returns one Parser per entity.ContentType, ready for the
// crawl manager to dispatch on Source.ContentType.
func (f *Factory) CreateParsers() map[entity.ContentType]Parser {
	feed := NewFeedParser()

	return map[entity.ContentType]Parser{
		entity.ContentTypeHTML:     NewHTMLParser(),
		entity.ContentTypeRSS:      feed,
		entity.ContentTypePDF:      NewPDFParser(),
		entity.ContentTypeTXT:      NewTXTParser(),
		entity.ContentTypeReddit:   NewRedditParser(f.fetcher),
		entity.ContentTypeTwitter:  NewTwitterParser(f.fetcher, feed),
		entity.ContentTypeYouTube:  NewYouTubeParser(f.fetcher, feed),
		entity.ContentTypeLinkedIn: NewLinkedInParser(f.fetcher),
	}
}
