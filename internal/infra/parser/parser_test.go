package parser

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTXTParser_Parse(t *testing.T) {
	p := NewTXTParser()
	results, err := p.Parse(context.Background(), []byte("Breaking News\nBody text follows."), "https://example.com/articles/my-article.txt")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Breaking News", results[0].Title)
	assert.Contains(t, results[0].RawContent, "Body text follows.")
}

func TestTXTParser_FallsBackToURLTitle(t *testing.T) {
	p := NewTXTParser()
	longFirstLine := ""
	for i := 0; i < 200; i++ {
		longFirstLine += "x"
	}
	results, err := p.Parse(context.Background(), []byte(longFirstLine), "https://example.com/my-report.txt")
	require.NoError(t, err)
	assert.Equal(t, "my report", results[0].Title)
}

func TestFeedParser_Parse(t *testing.T) {
	const rss = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <description>First body</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <description>Second body</description>
    </item>
  </channel>
</rss>`

	p := NewFeedParser()
	results, err := p.Parse(context.Background(), []byte(rss), "https://example.com/feed.xml")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "First Post", results[0].Title)
	assert.Equal(t, "https://example.com/first", results[0].URL)
	assert.NotNil(t, results[0].PublishDate)
	assert.Equal(t, "Second Post", results[1].Title)
}

func TestLinkedInParser_Parse(t *testing.T) {
	const html = `<html><head>
    <title>Acme Corp | LinkedIn</title>
    <meta property="og:description" content="Acme builds things.">
  </head><body>
    <div class="feed-shared-update-v2">We shipped a new feature today.</div>
  </body></html>`

	p := NewLinkedInParser(nil)
	results, err := p.Parse(context.Background(), []byte(html), "https://www.linkedin.com/company/acme")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Acme Corp | LinkedIn", results[0].Title)
	assert.Contains(t, results[0].RawContent, "shipped a new feature")
}

func TestExtractSubreddit(t *testing.T) {
	assert.Equal(t, "golang", extractSubreddit("https://www.reddit.com/r/golang/"))
	assert.Equal(t, "", extractSubreddit("https://www.reddit.com/"))
}

func TestExtractTwitterUsername(t *testing.T) {
	assert.Equal(t, "golang", extractTwitterUsername("https://twitter.com/golang"))
	assert.Equal(t, "golang", extractTwitterUsername("https://x.com/@golang"))
}

func TestYoutubeFeedURL(t *testing.T) {
	url, err := youtubeFeedURL("https://www.youtube.com/channel/UC123")
	require.NoError(t, err)
	assert.Contains(t, url, "channel_id=UC123")

	url, err = youtubeFeedURL("https://www.youtube.com/playlist?list=PL123")
	require.NoError(t, err)
	assert.Contains(t, url, "playlist_id=PL123")

	_, err = youtubeFeedURL("https://www.youtube.com/watch?v=abc")
	assert.Error(t, err)
}

func TestHtmlLang_ExtractsHTMLElementLang(t *testing.T) {
	raw := []byte(`<html lang="fr"><head><title>Bonjour</title></head><body>Salut</body></html>`)
	assert.Equal(t, "fr", htmlLang(raw))
}

func TestHtmlLang_EmptyWhenAbsent(t *testing.T) {
	raw := []byte(`<html><head><title>Hi</title></head><body>Hello</body></html>`)
	assert.Equal(t, "", htmlLang(raw))
}

func TestNextPageURL_RelNextWins(t *testing.T) {
	base, err := url.Parse("https://example.com/articles/1")
	require.NoError(t, err)
	raw := []byte(`<html><head><link rel="next" href="/articles/2"></head><body></body></html>`)
	assert.Equal(t, "https://example.com/articles/2", nextPageURL(raw, base))
}

func TestNextPageURL_MatchesClassHint(t *testing.T) {
	base, err := url.Parse("https://example.com/articles/1")
	require.NoError(t, err)
	raw := []byte(`<html><body><a class="pagination-next" href="/articles/2">More</a></body></html>`)
	assert.Equal(t, "https://example.com/articles/2", nextPageURL(raw, base))
}

func TestNextPageURL_MatchesIDHint(t *testing.T) {
	base, err := url.Parse("https://example.com/articles/1")
	require.NoError(t, err)
	raw := []byte(`<html><body><a id="next-page" href="/articles/2">More</a></body></html>`)
	assert.Equal(t, "https://example.com/articles/2", nextPageURL(raw, base))
}

func TestNextPageURL_EmptyWhenNoHint(t *testing.T) {
	base, err := url.Parse("https://example.com/articles/1")
	require.NoError(t, err)
	raw := []byte(`<html><body><a href="/other">Other</a></body></html>`)
	assert.Equal(t, "", nextPageURL(raw, base))
}
