package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	raw := `<p>Visit http://example.com or mail me@example.com!!! Great news...</p>`
	cleaned := Clean(raw)

	assert.NotContains(t, cleaned, "<p>")
	assert.NotContains(t, cleaned, "http://")
	assert.NotContains(t, cleaned, "me@example.com")
	assert.Contains(t, cleaned, "Great news")
}

func TestClean_Empty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
}

func TestExtractKeywords_RanksRepeatedTerms(t *testing.T) {
	text := `Kubernetes Kubernetes Kubernetes deployment strategies for Kubernetes clusters.
	Kubernetes networking and Kubernetes scheduling are core Kubernetes concepts.`

	keywords := ExtractKeywords(text, 5, nil)
	assert.NotEmpty(t, keywords)
	// The RAKE phrase "core kubernetes concepts" scores (3 + 2.25 + 3) * 1.5
	// = 12.375 and ranks first; the repeated term (frequency 7 * 1.0) ranks
	// next, ahead of every two-word phrase (at most 6.375).
	assert.Equal(t, "core kubernetes concepts", keywords[0].Term)
	assert.Equal(t, "kubernetes", keywords[1].Term)
}

func TestExtractKeywords_EmptyInput(t *testing.T) {
	assert.Nil(t, ExtractKeywords("", 10, nil))
	assert.Nil(t, ExtractKeywords("some text", 0, nil))
}

func TestExtractKeywords_TFIDFDownweightsCommonCorpusTerms(t *testing.T) {
	text := "database migration strategy for postgres clusters"
	corpus := []string{
		"database schema design for postgres clusters",
		"database backup strategy for postgres replicas",
	}

	keywords := ExtractKeywords(text, 10, corpus)
	assert.NotEmpty(t, keywords)
	// "migration" is in no corpus document, so its TF-IDF term (ln 2 * 200)
	// puts it first; "database" and "postgres" are in every document and get
	// an IDF of zero.
	assert.Equal(t, "migration", keywords[0].Term)
}
