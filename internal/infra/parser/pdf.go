package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser extracts plain text from PDF documents with ledongthuc/pdf, the
// pack's sole PDF-capable library (named in DESIGN.md as out-of-pack, since
// no example repo imports a PDF parser of its own), generalising
// original_source's pdf_parser.py.
type PDFParser struct{}

// NewPDFParser builds a PDFParser. It holds no state.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse returns a single ParserResult holding the document's extracted text.
// Encrypted PDFs that ledongthuc/pdf cannot open are reported as an error
// rather than silently skipped, matching original_source's explicit
// "encrypted PDF" failure path.
func (p *PDFParser) Parse(_ context.Context, raw []byte, sourceURL string) ([]ParserResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parser.PDFParser.Parse: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("parser.PDFParser.Parse: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return nil, fmt.Errorf("parser.PDFParser.Parse: %w", err)
	}

	text := buf.String()
	title := firstLineTitle(text)
	if title == "" {
		title = titleFromURL(sourceURL)
	}

	return []ParserResult{{
		URL:        sourceURL,
		Title:      title,
		RawContent: text,
		Custom:     map[string]any{"page_count": reader.NumPage()},
	}}, nil
}

// firstLineTitle mirrors original_source's fallback: the PDF's first
// non-blank line, truncated to a sane title length.
func firstLineTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		return line
	}
	return ""
}

// titleFromURL derives a human-ish title from a URL's final path segment,
// used when a document has no better title source (pdf.go, txt.go).
func titleFromURL(rawURL string) string {
	base := path.Base(rawURL)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}
