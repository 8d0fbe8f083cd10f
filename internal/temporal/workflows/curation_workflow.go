package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/clintrovert/firstissue/internal/activities"
	"github.com/clintrovert/firstissue/internal/curation"
	"github.com/clintrovert/firstissue/pkg/types"
)

const activityTimeout = 2 * time.Minute

// CurationWorkflow searches for issues and enriches them in batches of
// input.Workers until input.MaxCurated issues are curated. Output keeps
// search order. Per-issue failures, including failed activities, only skip
// that issue.
func CurationWorkflow(ctx workflow.Context, input CurationInput) (*CurationOutput, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting curation workflow", "languages", input.Languages)

	maxCurated := input.MaxCurated
	if maxCurated <= 0 {
		maxCurated = curation.DefaultMaxCurated
	}
	workers := input.Workers
	if workers <= 0 {
		workers = curation.DefaultWorkers
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: activityTimeout,
		// a single attempt; remote failures degrade instead of retrying
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var a *activities.CurationActivities

	output := &CurationOutput{
		Issues: []types.CuratedIssue{},
		Stats:  CurationStats{Skipped: map[string]int{}},
	}

	var search activities.SearchResult
	if err := workflow.ExecuteActivity(ctx, a.SearchIssues, input.Languages).Get(ctx, &search); err != nil {
		logger.Warn("search activity failed, treating as no results", "error", err)
		return output, nil
	}

	issues := search.Issues
	output.Stats.IssuesFound = len(issues)

	for start := 0; start < len(issues) && len(output.Issues) < maxCurated; start += workers {
		end := min(start+workers, len(issues))

		futures := make([]workflow.Future, 0, end-start)
		for _, issue := range issues[start:end] {
			futures = append(futures, workflow.ExecuteActivity(ctx, a.EnrichIssue, issue))
		}
		output.Stats.Attempted += len(futures)

		for i, future := range futures {
			var result activities.EnrichResult
			if err := future.Get(ctx, &result); err != nil {
				logger.Warn("enrich activity failed, skipping issue",
					"issue_url", issues[start+i].URL,
					"error", err,
				)
				output.Stats.Skipped[activities.SkipReasonActivityFailed]++
				continue
			}

			if result.Curated == nil {
				output.Stats.Skipped[result.SkipReason]++
				continue
			}
			if len(output.Issues) < maxCurated {
				output.Issues = append(output.Issues, *result.Curated)
				if result.Degraded {
					output.Stats.Degraded++
				}
			}
		}
	}

	output.Stats.Curated = len(output.Issues)

	logger.Info("curation workflow completed",
		"issues_found", output.Stats.IssuesFound,
		"curated", output.Stats.Curated,
	)

	return output, nil
}
