package activities

import (
	"github.com/clintrovert/firstissue/pkg/types"
)

// SkipReasonActivityFailed is recorded by the workflow when an enrich
// activity itself fails, as opposed to deliberately skipping its issue
const SkipReasonActivityFailed = "activity_failed"

// SearchResult contains the issues found by one search
type SearchResult struct {
	Query  string
	Issues []types.RawIssue
}

// EnrichResult contains either a curated issue or the reason it was skipped
type EnrichResult struct {
	Curated    *types.CuratedIssue
	Degraded   bool
	SkipReason string
}
