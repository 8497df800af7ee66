package parser

import (
	"context"
	"fmt"
	"regexp"

	"webcrawler/internal/domain/crawlerr"
)

var (
	youtubeChannelIDRegex  = regexp.MustCompile(`(?i)youtube\.com/channel/([A-Za-z0-9_-]+)`)
	youtubePlaylistIDRegex = regexp.MustCompile(`(?i)[?&]list=([A-Za-z0-9_-]+)`)
)

// YouTubeParser resolves a channel or playlist URL to YouTube's public Atom
// feed and delegates entry extraction to FeedParser, the same
// feed-fan-out-via-mirror approach TwitterParser uses
// (original_source's youtube_parser.py fetch_channel_videos/
// fetch_playlist_videos).
type YouTubeParser struct {
	fetcher Fetcher
	feed    *FeedParser
}

// NewYouTubeParser builds a YouTubeParser.
func NewYouTubeParser(fetcher Fetcher, feed *FeedParser) *YouTubeParser {
	return &YouTubeParser{fetcher: fetcher, feed: feed}
}

// Parse resolves sourceURL to a channel or playlist feed URL, fetches it,
// and returns the feed parser's per-video fan-out.
func (p *YouTubeParser) Parse(ctx context.Context, _ []byte, sourceURL string) ([]ParserResult, error) {
	feedURL, err := youtubeFeedURL(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parser.YouTubeParser.Parse: %w", err)
	}

	res, err := p.fetcher.Fetch(ctx, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("parser.YouTubeParser.Parse: %w", err)
	}
	if res.StatusCode != 200 {
		return nil, &crawlerr.NetworkFailure{URL: feedURL, Err: fmt.Errorf("unexpected status %d", res.StatusCode)}
	}

	return p.feed.Parse(ctx, res.Body, feedURL)
}

func youtubeFeedURL(sourceURL string) (string, error) {
	if m := youtubePlaylistIDRegex.FindStringSubmatch(sourceURL); len(m) == 2 {
		return fmt.Sprintf("https://www.youtube.com/feeds/videos.xml?playlist_id=%s", m[1]), nil
	}
	if m := youtubeChannelIDRegex.FindStringSubmatch(sourceURL); len(m) == 2 {
		return fmt.Sprintf("https://www.youtube.com/feeds/videos.xml?channel_id=%s", m[1]), nil
	}
	return "", fmt.Errorf("could not determine channel or playlist id from %q", sourceURL)
}
