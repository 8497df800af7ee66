package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkedInParser scrapes a public company/profile page's visible title,
// description, and post text with goquery. LinkedIn's own API requires
// authentication the crawler does not carry, so only the public page is
// available — the same constraint original_source's linkedin_parser.py
// documents (its fetch_company_page is a stub for exactly this reason).
// Unlike the other social parsers this one stays single-result: a LinkedIn
// page is a single normalised document, not a feed of entries.
type LinkedInParser struct {
	fetcher Fetcher
}

// NewLinkedInParser builds a LinkedInParser. fetcher is accepted for
// interface symmetry with the other social parsers but is unused: the crawl
// manager already fetches the page before calling Parse.
func NewLinkedInParser(fetcher Fetcher) *LinkedInParser {
	return &LinkedInParser{fetcher: fetcher}
}

// Parse extracts the title, meta description, and any visible post text
// from the already-fetched LinkedIn page.
func (p *LinkedInParser) Parse(_ context.Context, raw []byte, sourceURL string) ([]ParserResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parser.LinkedInParser.Parse: %w", err)
	}

	title := extractLinkedInTitle(doc)
	description := extractLinkedInDescription(doc)
	posts := extractLinkedInPosts(doc)

	content := description
	if len(posts) > 0 {
		content = strings.Join(posts, "\n\n")
	}

	return []ParserResult{{
		URL:        sourceURL,
		Title:      title,
		RawContent: content,
		Custom: map[string]any{
			"description": description,
			"post_count":  len(posts),
		},
	}}, nil
}

func extractLinkedInTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractLinkedInDescription(doc *goquery.Document) string {
	if d, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && d != "" {
		return d
	}
	if d, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return d
	}
	return ""
}

func extractLinkedInPosts(doc *goquery.Document) []string {
	var posts []string
	doc.Find(`[class*="feed-shared-update"], [class*="feed-shared-text"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			posts = append(posts, text)
		}
	})
	return posts
}
