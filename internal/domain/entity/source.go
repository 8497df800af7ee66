package entity

import (
	"fmt"
	"strings"
	"time"
)

// SourceType identifies the kind of origin a Source represents. It is
// distinct from ContentType: a "reddit" SourceType always has a "reddit"
// ContentType, but "website" and "blog" SourceTypes both produce "html".
type SourceType string

const (
	SourceTypeWebsite SourceType = "website"
	SourceTypeBlog    SourceType = "blog"
	SourceTypeRSS     SourceType = "rss_feed"
	SourceTypeDoc     SourceType = "document"
	SourceTypeAPI     SourceType = "api"
	SourceTypeTwitter SourceType = "twitter"
	SourceTypeReddit  SourceType = "reddit"
	SourceTypeYouTube SourceType = "youtube"
	SourceTypeLinkedIn SourceType = "linkedin"
)

var validSourceTypes = map[SourceType]bool{
	SourceTypeWebsite:  true,
	SourceTypeBlog:     true,
	SourceTypeRSS:      true,
	SourceTypeDoc:      true,
	SourceTypeAPI:      true,
	SourceTypeTwitter:  true,
	SourceTypeReddit:   true,
	SourceTypeYouTube:  true,
	SourceTypeLinkedIn: true,
}

// ContentType identifies how raw bytes fetched for a Source should be
// parsed; it is the key the parser factory dispatches on (see
// internal/infra/parser.Factory).
type ContentType string

const (
	ContentTypeHTML     ContentType = "html"
	ContentTypeRSS      ContentType = "rss"
	ContentTypePDF      ContentType = "pdf"
	ContentTypeTXT      ContentType = "txt"
	ContentTypeTwitter  ContentType = "twitter"
	ContentTypeReddit   ContentType = "reddit"
	ContentTypeYouTube  ContentType = "youtube"
	ContentTypeLinkedIn ContentType = "linkedin"
)

var validContentTypes = map[ContentType]bool{
	ContentTypeHTML:     true,
	ContentTypeRSS:      true,
	ContentTypePDF:      true,
	ContentTypeTXT:      true,
	ContentTypeTwitter:  true,
	ContentTypeReddit:   true,
	ContentTypeYouTube:  true,
	ContentTypeLinkedIn: true,
}

// SocialContentTypes are the content types the crawl manager dispatches to a
// single platform-appropriate fetch-and-parse instead of the traditional
// visit-queue loop.
var SocialContentTypes = map[ContentType]bool{
	ContentTypeTwitter:  true,
	ContentTypeReddit:   true,
	ContentTypeYouTube:  true,
	ContentTypeLinkedIn: true,
}

// Status is a Source's position in the crawl state machine.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPaused    Status = "paused"
	StatusBlocked   Status = "blocked"
)

// validTransitions enumerates the Source status machine. A transition not
// listed here is rejected by CanTransition.
var validTransitions = map[Status]map[Status]bool{
	StatusIdle:      {StatusRunning: true, StatusPaused: true},
	StatusRunning:   {StatusCompleted: true, StatusFailed: true, StatusBlocked: true},
	StatusCompleted: {StatusRunning: true, StatusPaused: true},
	StatusFailed:    {StatusRunning: true, StatusPaused: true},
	StatusPaused:    {StatusIdle: true},
	StatusBlocked:   {StatusIdle: true},
}

// CanTransition reports whether moving from one status to another is a legal
// edge in the state machine.
func CanTransition(from, to Status) bool {
	return validTransitions[from][to]
}

// RetryPolicy configures the Polite Fetcher's retry/backoff behaviour for a
// single Source, overriding the process-wide defaults.
type RetryPolicy struct {
	MaxRetries    int
	BackoffFactor float64
	Timeout       time.Duration
}

// CrawlConfig is a value embedded in a Source (not independently
// identified). Documents retain a snapshot of the owning Source's
// CrawlConfig at ingestion time.
type CrawlConfig struct {
	Frequency          string // 5-field cron expression
	MaxHits            int
	Enabled            bool
	FollowLinks        bool
	MaxDepth           int
	RateLimitPerMinute int
	RetryPolicy        RetryPolicy
}

// Validate enforces the boundary values accepted for a CrawlConfig.
func (c *CrawlConfig) Validate() error {
	if err := ValidateCronExpression(c.Frequency); err != nil {
		return fmt.Errorf("frequency: %w", err)
	}
	if c.MaxHits < 1 || c.MaxHits > 10000 {
		return &ValidationError{Field: "max_hits", Message: "must be between 1 and 10000"}
	}
	if c.MaxDepth < 1 || c.MaxDepth > 5 {
		return &ValidationError{Field: "max_depth", Message: "must be between 1 and 5"}
	}
	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 300 {
		return &ValidationError{Field: "rate_limit_per_minute", Message: "must be between 1 and 300"}
	}
	return nil
}

// ValidateCronExpression enforces a "whitespace-split yields exactly 5
// fields" rule ahead of handing the expression to robfig/cron's parser, so
// a malformed expression fails with a field-count message rather than a
// parser-internal one.
func ValidateCronExpression(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return &ValidationError{
			Field:   "frequency",
			Message: fmt.Sprintf("cron expression must have exactly 5 fields, got %d", len(fields)),
		}
	}
	return nil
}

// Source is a configured origin from which Documents are crawled.
type Source struct {
	ID             string
	Name           string
	URL            string
	ProjectID      string
	SourceType     SourceType
	ContentType    ContentType
	Config         CrawlConfig
	Status         Status
	LastCrawledAt  *time.Time
	LastError      string
	TotalDocuments int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the Source's own fields (not the embedded CrawlConfig,
// which callers validate separately via Config.Validate so a creation
// request can report both sets of errors independently).
func (s *Source) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(s.Name) > 200 {
		return &ValidationError{Field: "name", Message: "name must not exceed 200 characters"}
	}
	if err := ValidateURL(s.URL); err != nil {
		return err
	}
	if !validSourceTypes[s.SourceType] {
		return &ValidationError{Field: "source_type", Message: fmt.Sprintf("invalid source_type: %s", s.SourceType)}
	}
	if !validContentTypes[s.ContentType] {
		return &ValidationError{Field: "content_type", Message: fmt.Sprintf("invalid content_type: %s", s.ContentType)}
	}
	if s.Status == "" {
		s.Status = StatusIdle
	}
	return nil
}
