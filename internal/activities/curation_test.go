package activities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/firstissue/internal/cache"
	"github.com/clintrovert/firstissue/internal/curation"
	"github.com/clintrovert/firstissue/internal/query"
	"github.com/clintrovert/firstissue/pkg/types"
)

type stubSearcher struct {
	issues []types.RawIssue
	err    error
}

func (s stubSearcher) SearchIssues(context.Context, string) ([]types.RawIssue, error) {
	return s.issues, s.err
}

type stubFetcher struct{}

func (stubFetcher) GetRepository(_ context.Context, url string) (*types.RepositoryMetadata, error) {
	if url == "broken" {
		return nil, types.ErrTransport
	}
	return &types.RepositoryMetadata{FullName: "org/" + url, Stars: 11}, nil
}

type stubClassifier struct {
	err error
}

func (c stubClassifier) Classify(context.Context, types.RawIssue) (types.Analysis, error) {
	if c.err != nil {
		return types.Analysis{Classification: types.ClassificationNotGood, Summary: types.ErrorFallbackSummary}, c.err
	}
	return types.Analysis{Classification: types.ClassificationGood, Summary: "fine"}, nil
}

func newEnv(t *testing.T, searcher stubSearcher, cls stubClassifier) (*testsuite.TestActivityEnvironment, *CurationActivities) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	pipeline := curation.NewPipeline(searcher, cache.NewRepoCache(stubFetcher{}, logger), cls, curation.Options{}, logger)
	acts := NewCurationActivities(pipeline, logger)

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts)
	return env, acts
}

func TestSearchIssues(t *testing.T) {
	issues := []types.RawIssue{{Title: "a", RepositoryURL: "r"}, {Title: "b"}}
	env, acts := newEnv(t, stubSearcher{issues: issues}, stubClassifier{})

	val, err := env.ExecuteActivity(acts.SearchIssues, []string{"go"})
	require.NoError(t, err)

	var result SearchResult
	require.NoError(t, val.Get(&result))
	assert.Equal(t, query.Build([]string{"go"}), result.Query)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, "a", result.Issues[0].Title)
}

func TestSearchIssues_FailureIsEmpty(t *testing.T) {
	env, acts := newEnv(t, stubSearcher{err: types.ErrTransport}, stubClassifier{})

	val, err := env.ExecuteActivity(acts.SearchIssues, []string{"go"})
	require.NoError(t, err)

	var result SearchResult
	require.NoError(t, val.Get(&result))
	assert.Empty(t, result.Issues)
}

func TestEnrichIssue(t *testing.T) {
	tests := []struct {
		name         string
		issue        types.RawIssue
		cls          stubClassifier
		wantCurated  bool
		wantDegraded bool
		wantReason   string
	}{
		{
			name:        "curated",
			issue:       types.RawIssue{Title: "ok", RepositoryURL: "r"},
			wantCurated: true,
		},
		{
			name:       "missing repository",
			issue:      types.RawIssue{Title: "orphan"},
			wantReason: "missing_repository",
		},
		{
			name:       "repository unavailable",
			issue:      types.RawIssue{Title: "gone", RepositoryURL: "broken"},
			wantReason: "repository_unavailable",
		},
		{
			name:         "degraded classification is kept",
			issue:        types.RawIssue{Title: "slow model", RepositoryURL: "r"},
			cls:          stubClassifier{err: types.ErrClassificationDegraded},
			wantCurated:  true,
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, acts := newEnv(t, stubSearcher{}, tt.cls)

			val, err := env.ExecuteActivity(acts.EnrichIssue, tt.issue)
			require.NoError(t, err)

			var result EnrichResult
			require.NoError(t, val.Get(&result))

			assert.Equal(t, tt.wantCurated, result.Curated != nil)
			assert.Equal(t, tt.wantDegraded, result.Degraded)
			assert.Equal(t, tt.wantReason, result.SkipReason)
			if tt.wantCurated {
				assert.Equal(t, "org/r", result.Curated.RepoName)
				assert.Equal(t, 11, result.Curated.Stars)
			}
		})
	}
}
