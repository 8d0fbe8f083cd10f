package workflows

import (
	"github.com/clintrovert/firstissue/pkg/types"
)

// CurationInput is the input for the curation workflow
type CurationInput struct {
	Languages  []string
	MaxCurated int
	Workers    int
}

// CurationOutput is the result of the curation workflow
type CurationOutput struct {
	Issues []types.CuratedIssue `json:"issues"`
	Stats  CurationStats        `json:"stats"`
}

// CurationStats counts per-issue outcomes of one workflow run
type CurationStats struct {
	IssuesFound int            `json:"issues_found"`
	Attempted   int            `json:"attempted"`
	Curated     int            `json:"curated"`
	Degraded    int            `json:"degraded"`
	Skipped     map[string]int `json:"skipped,omitempty"`
}
