package mongo

import (
	"time"

	"webcrawler/internal/domain/entity"
)

// The bson* structs below are the wire shape persisted to each collection.
// Identifiers are stored as the entity's own string ID rather than letting Mongo assign an
// ObjectID, so entity.ID is stable from the moment the crawl manager or an
// external caller mints it via uuid.NewString().

type bsonProject struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Domain      string    `bson:"domain"`
	Keywords    []string  `bson:"keywords"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toBSONProject(p *entity.Project) bsonProject {
	return bsonProject{
		ID:          p.ID,
		Name:        p.Name,
		Domain:      p.Domain,
		Keywords:    p.Keywords,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (b bsonProject) toEntity() *entity.Project {
	return &entity.Project{
		ID:          b.ID,
		Name:        b.Name,
		Domain:      b.Domain,
		Keywords:    b.Keywords,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type bsonRetryPolicy struct {
	MaxRetries    int           `bson:"max_retries"`
	BackoffFactor float64       `bson:"backoff_factor"`
	Timeout       time.Duration `bson:"timeout"`
}

type bsonCrawlConfig struct {
	Frequency          string          `bson:"frequency"`
	MaxHits            int             `bson:"max_hits"`
	Enabled            bool            `bson:"enabled"`
	FollowLinks        bool            `bson:"follow_links"`
	MaxDepth           int             `bson:"max_depth"`
	RateLimitPerMinute int             `bson:"rate_limit_per_minute"`
	RetryPolicy        bsonRetryPolicy `bson:"retry_policy"`
}

func toBSONCrawlConfig(c entity.CrawlConfig) bsonCrawlConfig {
	return bsonCrawlConfig{
		Frequency:          c.Frequency,
		MaxHits:            c.MaxHits,
		Enabled:            c.Enabled,
		FollowLinks:        c.FollowLinks,
		MaxDepth:           c.MaxDepth,
		RateLimitPerMinute: c.RateLimitPerMinute,
		RetryPolicy: bsonRetryPolicy{
			MaxRetries:    c.RetryPolicy.MaxRetries,
			BackoffFactor: c.RetryPolicy.BackoffFactor,
			Timeout:       c.RetryPolicy.Timeout,
		},
	}
}

func (b bsonCrawlConfig) toEntity() entity.CrawlConfig {
	return entity.CrawlConfig{
		Frequency:          b.Frequency,
		MaxHits:            b.MaxHits,
		Enabled:            b.Enabled,
		FollowLinks:        b.FollowLinks,
		MaxDepth:           b.MaxDepth,
		RateLimitPerMinute: b.RateLimitPerMinute,
		RetryPolicy: entity.RetryPolicy{
			MaxRetries:    b.RetryPolicy.MaxRetries,
			BackoffFactor: b.RetryPolicy.BackoffFactor,
			Timeout:       b.RetryPolicy.Timeout,
		},
	}
}

type bsonSource struct {
	ID             string          `bson:"_id"`
	Name           string          `bson:"name"`
	URL            string          `bson:"url"`
	ProjectID      string          `bson:"project_id,omitempty"`
	SourceType     string          `bson:"source_type"`
	ContentType    string          `bson:"content_type"`
	Config         bsonCrawlConfig `bson:"crawl_config"`
	Status         string          `bson:"status"`
	LastCrawledAt  *time.Time      `bson:"last_crawled_at,omitempty"`
	LastError      string          `bson:"last_error,omitempty"`
	TotalDocuments int64           `bson:"total_documents"`
	CreatedAt      time.Time       `bson:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at"`
}

func toBSONSource(s *entity.Source) bsonSource {
	return bsonSource{
		ID:             s.ID,
		Name:           s.Name,
		URL:            s.URL,
		ProjectID:      s.ProjectID,
		SourceType:     string(s.SourceType),
		ContentType:    string(s.ContentType),
		Config:         toBSONCrawlConfig(s.Config),
		Status:         string(s.Status),
		LastCrawledAt:  s.LastCrawledAt,
		LastError:      s.LastError,
		TotalDocuments: s.TotalDocuments,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (b bsonSource) toEntity() *entity.Source {
	return &entity.Source{
		ID:             b.ID,
		Name:           b.Name,
		URL:            b.URL,
		ProjectID:      b.ProjectID,
		SourceType:     entity.SourceType(b.SourceType),
		ContentType:    entity.ContentType(b.ContentType),
		Config:         b.Config.toEntity(),
		Status:         entity.Status(b.Status),
		LastCrawledAt:  b.LastCrawledAt,
		LastError:      b.LastError,
		TotalDocuments: b.TotalDocuments,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

type bsonDocumentMetadata struct {
	Title       string         `bson:"title,omitempty"`
	Author      string         `bson:"author,omitempty"`
	PublishDate *time.Time     `bson:"publish_date,omitempty"`
	Language    string         `bson:"language,omitempty"`
	WordCount   int            `bson:"word_count"`
	Keywords    []string       `bson:"keywords,omitempty"`
	Custom      map[string]any `bson:"custom,omitempty"`
}

type bsonDocument struct {
	ID                  string               `bson:"_id"`
	URL                 string               `bson:"url"`
	SourceID            string               `bson:"source_id"`
	ContentType         string               `bson:"content_type"`
	RawContent          string               `bson:"raw_content"`
	CleanedText         string               `bson:"cleaned_text"`
	Metadata            bsonDocumentMetadata `bson:"metadata"`
	CrawlConfigSnapshot bsonCrawlConfig      `bson:"crawl_config_snapshot"`
	CrawledAt           time.Time            `bson:"crawled_at"`
}

func toBSONDocument(d *entity.Document) bsonDocument {
	return bsonDocument{
		ID:          d.ID,
		URL:         d.URL,
		SourceID:    d.SourceID,
		ContentType: string(d.ContentType),
		RawContent:  d.RawContent,
		CleanedText: d.CleanedText,
		Metadata: bsonDocumentMetadata{
			Title:       d.Metadata.Title,
			Author:      d.Metadata.Author,
			PublishDate: d.Metadata.PublishDate,
			Language:    d.Metadata.Language,
			WordCount:   d.Metadata.WordCount,
			Keywords:    d.Metadata.Keywords,
			Custom:      d.Metadata.Custom,
		},
		CrawlConfigSnapshot: toBSONCrawlConfig(d.CrawlConfigSnapshot),
		CrawledAt:           d.CrawledAt,
	}
}

func (b bsonDocument) toEntity() *entity.Document {
	return &entity.Document{
		ID:          b.ID,
		URL:         b.URL,
		SourceID:    b.SourceID,
		ContentType: entity.ContentType(b.ContentType),
		RawContent:  b.RawContent,
		CleanedText: b.CleanedText,
		Metadata: entity.DocumentMetadata{
			Title:       b.Metadata.Title,
			Author:      b.Metadata.Author,
			PublishDate: b.Metadata.PublishDate,
			Language:    b.Metadata.Language,
			WordCount:   b.Metadata.WordCount,
			Keywords:    b.Metadata.Keywords,
			Custom:      b.Metadata.Custom,
		},
		CrawlConfigSnapshot: b.CrawlConfigSnapshot.toEntity(),
		CrawledAt:           b.CrawledAt,
	}
}

type bsonCrawlStats struct {
	ID              string     `bson:"_id"`
	SourceID        string     `bson:"source_id"`
	PagesCrawled    int        `bson:"pages_crawled"`
	PagesFailed     int        `bson:"pages_failed"`
	BytesDownloaded int64      `bson:"bytes_downloaded"`
	DurationSeconds float64    `bson:"duration_seconds"`
	StartedAt       time.Time  `bson:"started_at"`
	CompletedAt     *time.Time `bson:"completed_at,omitempty"`
	Errors          []string   `bson:"errors,omitempty"`
}

func toBSONCrawlStats(c *entity.CrawlStats) bsonCrawlStats {
	return bsonCrawlStats{
		ID:              c.ID,
		SourceID:        c.SourceID,
		PagesCrawled:    c.PagesCrawled,
		PagesFailed:     c.PagesFailed,
		BytesDownloaded: c.BytesDownloaded,
		DurationSeconds: c.Duration.Seconds(),
		StartedAt:       c.StartedAt,
		CompletedAt:     c.CompletedAt,
		Errors:          c.Errors,
	}
}

func (b bsonCrawlStats) toEntity() *entity.CrawlStats {
	return &entity.CrawlStats{
		ID:              b.ID,
		SourceID:        b.SourceID,
		PagesCrawled:    b.PagesCrawled,
		PagesFailed:     b.PagesFailed,
		BytesDownloaded: b.BytesDownloaded,
		Duration:        time.Duration(b.DurationSeconds * float64(time.Second)),
		StartedAt:       b.StartedAt,
		CompletedAt:     b.CompletedAt,
		Errors:          b.Errors,
	}
}
