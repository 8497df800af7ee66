// Package crawlerr defines the typed error taxonomy the crawling core uses
// to communicate failure kinds across component boundaries. Each
// kind is an explicit Go type or sentinel, never a bare string, so callers
// can branch on it with errors.Is/errors.As instead of parsing messages.
package crawlerr

import (
	"errors"
	"fmt"
)

// Sentinel errors that carry no extra structured data.
var (
	// ErrRobotsDisallowed is returned by the fetcher when robots.txt forbids
	// the configured user-agent from fetching a URL. Policy: skip the URL,
	// do not count it as a failure, do not retry.
	ErrRobotsDisallowed = errors.New("robots.txt disallows this URL")

	// ErrDuplicateDocument is returned by the store on a duplicate
	// (url, source_id) insert. Policy: silently treated as success-no-op.
	ErrDuplicateDocument = errors.New("document already present")

	// ErrNotFound is returned by the store when a requested entity does not
	// exist. Policy: surface to caller.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidConfig is returned when a CrawlConfig or cron expression
	// fails validation. Policy: refuse to schedule; surface to caller.
	ErrInvalidConfig = errors.New("invalid crawl configuration")

	// ErrAlreadyRunning is returned by the scheduler when a manual trigger
	// targets a Source that already has an active_crawls mark.
	ErrAlreadyRunning = errors.New("source already has a crawl in progress")
)

// NetworkFailure wraps a transport-level error after retries have been
// exhausted. Policy: increment pages_failed, continue the run.
type NetworkFailure struct {
	URL string
	Err error
}

func (e *NetworkFailure) Error() string {
	return fmt.Sprintf("network failure fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkFailure) Unwrap() error { return e.Err }

// BlockKind distinguishes the adversarial-response classification that
// caused a run to abort.
type BlockKind string

const (
	BlockKindHTTP    BlockKind = "http_block"
	BlockKindCaptcha BlockKind = "captcha"
	BlockKindIPBan   BlockKind = "ip_ban"
)

// Blocked is returned by the crawl manager when the blocking detector
// classifies a response as adversarial. Policy: abort the current run,
// transition the source to blocked, record Reason as last_error.
type Blocked struct {
	Kind   BlockKind
	Reason string
}

func (e *Blocked) Error() string {
	return fmt.Sprintf("blocked (%s): %s", e.Kind, e.Reason)
}

// ParseError wraps a failure inside a Parser's Parse method. Policy:
// increment pages_failed, append to run errors, continue the run.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps a failure writing to the store. PerDocument
// distinguishes two policies: a per-document failure is recorded and the
// run continues; a per-run failure (e.g. connection lost) fails the whole
// run.
type StorageError struct {
	Op          string
	Err         error
	PerDocument bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
