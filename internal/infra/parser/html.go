package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// nextPageClassRegex matches class/id hints for a "next page" link beyond
// the rel=next attribute, e.g. class="pagination-next" or id="next-page".
var nextPageClassRegex = regexp.MustCompile(`(?i)next`)

// HTMLParser extracts the main article body from a generic web page using
// Mozilla's Readability algorithm, grounded on the same go-shiori/go-readability
// dependency internal/usecase/fetch.ContentFetcher uses for on-the-fly content
// enrichment, adapted here into the crawler's own Parser contract
// (original_source's html_parser.py did the equivalent with readability-lxml).
type HTMLParser struct{}

// NewHTMLParser builds an HTMLParser. It holds no state.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// Parse always returns at most one ParserResult: a web page is one document.
func (p *HTMLParser) Parse(_ context.Context, raw []byte, sourceURL string) ([]ParserResult, error) {
	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parser.HTMLParser.Parse: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(raw), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("parser.HTMLParser.Parse: %w", err)
	}

	text := article.TextContent
	if text == "" {
		// Not every page yields a readable article body (landing pages,
		// pure-JS shells); fall back to whatever Readability still found
		// rather than dropping the page entirely.
		text = article.Excerpt
	}

	custom := map[string]any{
		"site_name": article.SiteName,
		"excerpt":   article.Excerpt,
	}
	if next := nextPageURL(raw, parsedURL); next != "" {
		custom["next_page"] = next
	}

	return []ParserResult{{
		URL:         sourceURL,
		Title:       article.Title,
		Author:      article.Byline,
		PublishDate: article.PublishedTime,
		RawContent:  text,
		Language:    htmlLang(raw),
		Custom:      custom,
	}}, nil
}

// htmlLang reads the `lang` attribute off the document's `<html>` element.
func htmlLang(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	lang, _ := doc.Find("html").First().Attr("lang")
	return lang
}

// nextPageURL looks for a pagination hint — `<link rel="next">`/`<a
// rel="next">`, or an `<a>` whose class or id matches /next/i — and resolves
// it against base, enabling the crawl manager's follow_links traditional
// loop. Shallow and single-hop by design: the first match wins.
func nextPageURL(raw []byte, base *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	href, ok := doc.Find(`link[rel="next"]`).First().Attr("href")
	if !ok {
		href, ok = doc.Find(`a[rel="next"]`).First().Attr("href")
	}
	if !ok {
		doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			id, _ := s.Attr("id")
			if nextPageClassRegex.MatchString(class) || nextPageClassRegex.MatchString(id) {
				href, ok = s.Attr("href")
				return false
			}
			return true
		})
	}
	if !ok || href == "" {
		return ""
	}

	resolved, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(resolved).String()
}
