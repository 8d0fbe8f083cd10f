package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/curation"
	"github.com/clintrovert/firstissue/internal/query"
	"github.com/clintrovert/firstissue/pkg/types"
)

// CurationActivities exposes the pipeline steps as Temporal activities
type CurationActivities struct {
	pipeline *curation.Pipeline
	logger   *zap.Logger
}

// NewCurationActivities creates a new curation activities handler
func NewCurationActivities(pipeline *curation.Pipeline, logger *zap.Logger) *CurationActivities {
	return &CurationActivities{
		pipeline: pipeline,
		logger:   logger,
	}
}

// SearchIssues runs the issue search for languages. A failed search is
// returned as an empty result, never as an activity error.
func (a *CurationActivities) SearchIssues(ctx context.Context, languages []string) (SearchResult, error) {
	info := activity.GetInfo(ctx)

	issues, err := a.pipeline.Search(ctx, languages)
	if err != nil {
		a.logger.Warn("search failed, treating as no results",
			zap.String("workflow_id", info.WorkflowExecution.ID),
			zap.Strings("languages", languages),
			zap.Error(err),
		)
	}

	return SearchResult{
		Query:  query.Build(languages),
		Issues: issues,
	}, nil
}

// EnrichIssue curates one issue. Skips are reported in the result, not as
// an activity error.
func (a *CurationActivities) EnrichIssue(ctx context.Context, issue types.RawIssue) (EnrichResult, error) {
	info := activity.GetInfo(ctx)

	curated, err := a.pipeline.Enrich(ctx, issue)
	if curated == nil {
		reason := curation.SkipReason(err)
		a.logger.Info("skipping issue",
			zap.String("workflow_id", info.WorkflowExecution.ID),
			zap.String("issue_url", issue.URL),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return EnrichResult{SkipReason: reason}, nil
	}

	if err != nil {
		a.logger.Warn("classification degraded",
			zap.String("workflow_id", info.WorkflowExecution.ID),
			zap.String("issue_url", issue.URL),
			zap.Error(err),
		)
	}

	return EnrichResult{
		Curated:  curated,
		Degraded: err != nil,
	}, nil
}
