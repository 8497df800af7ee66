package entity

import (
	"fmt"
	"time"
)

// Project groups zero or more Sources under a common name, domain tag, and a
// list of target keywords. Deleting a Project cascades to its Sources (and,
// transitively, their Documents and CrawlStats).
type Project struct {
	ID          string
	Name        string
	Domain      string
	Keywords    []string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks that the Project has a non-empty name. Domain, Keywords,
// and Description are optional.
func (p *Project) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(p.Name) > 200 {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("name must not exceed %d characters", 200)}
	}
	return nil
}
