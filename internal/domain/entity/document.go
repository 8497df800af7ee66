// Package entity defines the core domain entities and validation logic for the crawler.
// It contains the fundamental business objects — Project, Source, CrawlConfig,
// Document, and CrawlStats — along with their validation rules and the Source
// status machine.
package entity

import "time"

// DocumentMetadata is the normalised metadata a parser attaches to the text
// it extracted from one page/entry/post.
type DocumentMetadata struct {
	Title       string
	Author      string
	PublishDate *time.Time
	Language    string
	WordCount   int
	Keywords    []string
	Custom      map[string]any
}

// Document is one normalised record produced from one page/entry/post of a
// Source. The uniqueness invariant (URL, SourceID) is enforced by the store,
// not here — a repeat ingestion is a no-op, not a validation error.
type Document struct {
	ID                  string
	URL                 string
	SourceID            string
	ContentType         ContentType
	RawContent          string
	CleanedText         string
	Metadata            DocumentMetadata
	CrawlConfigSnapshot CrawlConfig
	CrawledAt           time.Time
}

// Validate checks the minimal fields a Document needs before it reaches the
// store; the uniqueness check is the store's responsibility.
func (d *Document) Validate() error {
	if d.URL == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	if d.SourceID == "" {
		return &ValidationError{Field: "source_id", Message: "source_id is required"}
	}
	if !validContentTypes[d.ContentType] {
		return &ValidationError{Field: "content_type", Message: "invalid content_type"}
	}
	return nil
}
