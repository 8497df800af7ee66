package parser

import (
	"context"
	"strings"
)

// TXTParser handles plain-text sources: the whole body is the content, and
// the title is the first line if it reads like one, else derived from the
// URL (original_source's txt_parser.py).
type TXTParser struct{}

// NewTXTParser builds a TXTParser. It holds no state.
func NewTXTParser() *TXTParser {
	return &TXTParser{}
}

// Parse returns a single ParserResult for the whole text body.
func (p *TXTParser) Parse(_ context.Context, raw []byte, sourceURL string) ([]ParserResult, error) {
	text := string(raw)

	title := ""
	if first := firstLineTitle(text); first != "" && len(first) <= 120 {
		title = first
	} else {
		title = titleFromURL(sourceURL)
	}

	return []ParserResult{{
		URL:        sourceURL,
		Title:      title,
		RawContent: strings.TrimSpace(text),
	}}, nil
}
