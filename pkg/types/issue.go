package types

import (
	"time"
)

// RawIssue is an issue as returned by the search step
type RawIssue struct {
	ID            int64     `json:"id"`
	Number        int       `json:"number"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Body          string    `json:"body,omitempty"`
	Labels        []string  `json:"labels"`
	UpdatedAt     time.Time `json:"updated_at"`
	RepositoryURL string    `json:"repository_url,omitempty"`
}

// HasRepository reports whether the issue references its owning repository
func (i *RawIssue) HasRepository() bool {
	return i.RepositoryURL != ""
}

// RepositoryMetadata contains the repository fields shown next to a curated issue
type RepositoryMetadata struct {
	FullName string `json:"full_name"`
	Stars    int    `json:"stars"`
	HTMLURL  string `json:"html_url,omitempty"`
}
