package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"webcrawler/internal/domain/crawlerr"
)

var subredditPathRegex = regexp.MustCompile(`(?i)/r/([A-Za-z0-9_]+)`)

// redditListing is the subset of Reddit's public .json listing response this
// parser needs (original_source's reddit_parser.py _extract_posts).
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Title       string  `json:"title"`
				SelfText    string  `json:"selftext"`
				Author      string  `json:"author"`
				CreatedUTC  float64 `json:"created_utc"`
				Permalink   string  `json:"permalink"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditParser fetches a subreddit's public JSON listing and emits one
// ParserResult per post, grounded on original_source's reddit_parser.py
// fetch_subreddit/_extract_posts. Unlike the other content-type parsers it
// ignores the raw bytes the crawl manager already fetched for sourceURL:
// the source URL only identifies the subreddit, the actual content comes
// from Reddit's .json listing endpoint, fetched here directly.
type RedditParser struct {
	fetcher Fetcher
}

// NewRedditParser builds a RedditParser. fetcher is used to retrieve the
// subreddit's public listing JSON.
func NewRedditParser(fetcher Fetcher) *RedditParser {
	return &RedditParser{fetcher: fetcher}
}

// Parse derives the subreddit name from sourceURL, fetches its "new" listing,
// and returns one ParserResult per post.
func (p *RedditParser) Parse(ctx context.Context, _ []byte, sourceURL string) ([]ParserResult, error) {
	subreddit := extractSubreddit(sourceURL)
	if subreddit == "" {
		return nil, fmt.Errorf("parser.RedditParser.Parse: could not determine subreddit from %q", sourceURL)
	}

	listingURL := fmt.Sprintf("https://www.reddit.com/r/%s/new.json?limit=25", subreddit)
	res, err := p.fetcher.Fetch(ctx, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("parser.RedditParser.Parse: %w", err)
	}
	if res.StatusCode != 200 {
		return nil, &crawlerr.NetworkFailure{URL: listingURL, Err: fmt.Errorf("unexpected status %d", res.StatusCode)}
	}

	var listing redditListing
	if err := json.Unmarshal(res.Body, &listing); err != nil {
		return nil, fmt.Errorf("parser.RedditParser.Parse: %w", err)
	}

	results := make([]ParserResult, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		publishDate := time.Unix(int64(post.CreatedUTC), 0).UTC()
		results = append(results, ParserResult{
			URL:         "https://www.reddit.com" + post.Permalink,
			Title:       post.Title,
			Author:      post.Author,
			PublishDate: &publishDate,
			RawContent:  post.SelfText,
			Custom: map[string]any{
				"subreddit":    subreddit,
				"score":        post.Score,
				"num_comments": post.NumComments,
				"post_id":      post.ID,
			},
		})
	}
	return results, nil
}

func extractSubreddit(rawURL string) string {
	m := subredditPathRegex.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
