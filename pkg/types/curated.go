package types

import (
	"time"
)

// Classification is the beginner-suitability verdict for an issue
type Classification string

const (
	ClassificationGood    Classification = "Good"
	ClassificationNotGood Classification = "Not Good"
	// ClassificationUnknown is only produced when no verdict could be reached at all
	ClassificationUnknown Classification = "Unknown"
)

// Fallback summaries attached to analyses that could not be produced normally
const (
	GenericFallbackSummary = "Could not fully analyze this issue. Please review it carefully."
	ErrorFallbackSummary   = "Could not analyze this issue due to an error. It might be a good fit, but please review it carefully."
	UnknownFallbackSummary = "Could not analyze this issue, but it might be a good starting point."
)

// Analysis pairs a classification with its summary
type Analysis struct {
	Classification Classification `json:"classification"`
	Summary        string         `json:"summary"`
}

// CuratedIssue is an issue that made it through the whole pipeline
type CuratedIssue struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	RepoName  string    `json:"repo_name"`
	Stars     int       `json:"stars"`
	Labels    []string  `json:"labels"`
	UpdatedAt time.Time `json:"updated_at"`
	Analysis  Analysis  `json:"analysis"`
}

// NewCuratedIssue assembles a curated issue from its three sources
func NewCuratedIssue(issue RawIssue, repo RepositoryMetadata, analysis Analysis) CuratedIssue {
	labels := issue.Labels
	if labels == nil {
		labels = []string{}
	}

	return CuratedIssue{
		Title:     issue.Title,
		URL:       issue.URL,
		RepoName:  repo.FullName,
		Stars:     repo.Stars,
		Labels:    labels,
		UpdatedAt: issue.UpdatedAt,
		Analysis:  analysis,
	}
}
