// Package text implements the cleaning and keyword-extraction stage of the
// pipeline: turning a Parser's raw extracted content into the
// CleanedText and Metadata.Keywords a Document stores, grounded on
// original_source's processing/text_cleaner.py and
// processing/intelligent_keywords.py — the teacher repo has no equivalent,
// so only its general package-organisation conventions are reused here.
package text

import "regexp"

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]+>`)
	urlRegex         = regexp.MustCompile(`https?://[^\s)"']+`)
	emailRegex       = regexp.MustCompile(`\S+@\S+`)
	nonWordRegex     = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?;:\-']`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	excessPunctRegex = regexp.MustCompile(`[.,!?;:]{2,}`)
)

// Clean normalises raw extracted text: HTML artifacts, URLs, and email
// addresses are stripped, non-word characters other than basic punctuation
// are collapsed to spaces, whitespace is normalised, and runs of punctuation
// are folded to a single period (original_source's TextCleaner.clean_text).
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := htmlTagRegex.ReplaceAllString(raw, "")
	cleaned = urlRegex.ReplaceAllString(cleaned, "")
	cleaned = emailRegex.ReplaceAllString(cleaned, "")
	cleaned = nonWordRegex.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRegex.ReplaceAllString(cleaned, " ")
	cleaned = excessPunctRegex.ReplaceAllString(cleaned, ".")

	return trimSpace(cleaned)
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpaceByte(s[start]) {
		start++
	}
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
