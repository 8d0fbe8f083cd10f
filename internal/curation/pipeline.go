package curation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clintrovert/firstissue/internal/cache"
	"github.com/clintrovert/firstissue/internal/classifier"
	"github.com/clintrovert/firstissue/internal/query"
	"github.com/clintrovert/firstissue/pkg/types"
)

const (
	DefaultMaxCurated = 20
	DefaultWorkers    = 4
)

// Run states, logged as the pipeline moves through them
const (
	StateSearching = "searching"
	StateEnriching = "enriching"
	StateDone      = "done"
)

// Skip reasons, always returned wrapped in types.ErrNotCurated
var (
	ErrMissingRepository     = errors.New("issue has no repository reference")
	ErrRepositoryUnavailable = errors.New("repository metadata unavailable")
	ErrEnrichPanic           = errors.New("enrichment panicked")
)

// Searcher runs one issue search
type Searcher interface {
	SearchIssues(ctx context.Context, q string) ([]types.RawIssue, error)
}

// RepositoryResolver resolves a repository identifier to its metadata
type RepositoryResolver interface {
	GetOrFetch(ctx context.Context, repositoryURL string) (types.RepositoryMetadata, error)
}

type cacheStatsReporter interface {
	Stats() cache.Stats
}

// Options bounds a pipeline run
type Options struct {
	// MaxCurated caps the number of curated issues returned
	MaxCurated int
	// Workers is the number of issues enriched concurrently
	Workers int
}

// Stats counts what happened during one run
type Stats struct {
	IssuesFound                  int   `json:"issues_found"`
	Attempted                    int   `json:"attempted"`
	Curated                      int   `json:"curated"`
	SkippedNoRepository          int   `json:"skipped_no_repository"`
	SkippedRepositoryUnavailable int   `json:"skipped_repository_unavailable"`
	SkippedPanic                 int   `json:"skipped_panic"`
	Degraded                     int   `json:"degraded"`
	CacheHits                    int64 `json:"cache_hits"`
	CacheMisses                  int64 `json:"cache_misses"`
}

// Result is the output of one run
type Result struct {
	Issues []types.CuratedIssue `json:"issues"`
	Stats  Stats                `json:"stats"`
}

// Pipeline searches for beginner-friendly issues and curates them
type Pipeline struct {
	searcher   Searcher
	repos      RepositoryResolver
	classifier classifier.Classifier
	logger     *zap.Logger
	maxCurated int
	workers    int
}

// NewPipeline creates a new curation pipeline. Non-positive options fall
// back to DefaultMaxCurated and DefaultWorkers.
func NewPipeline(
	searcher Searcher,
	repos RepositoryResolver,
	classifier classifier.Classifier,
	opts Options,
	logger *zap.Logger,
) *Pipeline {
	if opts.MaxCurated <= 0 {
		opts.MaxCurated = DefaultMaxCurated
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	return &Pipeline{
		searcher:   searcher,
		repos:      repos,
		classifier: classifier,
		logger:     logger,
		maxCurated: opts.MaxCurated,
		workers:    opts.Workers,
	}
}

// MaxCurated returns the configured result cap
func (p *Pipeline) MaxCurated() int {
	return p.maxCurated
}

// Workers returns the configured pool size
func (p *Pipeline) Workers() int {
	return p.workers
}

// FindGoodFirstIssues returns curated issues for the given languages.
// Callers must reject an empty language list themselves.
func (p *Pipeline) FindGoodFirstIssues(ctx context.Context, languages []string) []types.CuratedIssue {
	return p.Run(ctx, languages).Issues
}

// Run executes one search and curates its results. It never fails: every
// error is folded into a skipped issue, a fallback analysis, or an empty list.
func (p *Pipeline) Run(ctx context.Context, languages []string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("curation run panicked",
				zap.Strings("languages", languages),
				zap.Any("panic", r),
			)
			result = Result{Issues: []types.CuratedIssue{}}
		}
	}()

	before := p.cacheStats()

	p.logger.Info("curation state",
		zap.String("state", StateSearching),
		zap.Strings("languages", languages),
	)

	issues, err := p.Search(ctx, languages)
	if err != nil {
		p.logger.Warn("search failed, treating as no results", zap.Error(err))
	}

	result.Stats.IssuesFound = len(issues)
	if len(issues) == 0 {
		result.Issues = []types.CuratedIssue{}
		p.logDone(result.Stats)
		return result
	}

	p.logger.Info("curation state",
		zap.String("state", StateEnriching),
		zap.Int("issues_found", len(issues)),
		zap.Int("workers", p.workers),
		zap.Int("max_curated", p.maxCurated),
	)

	result.Issues = p.enrichAll(ctx, issues, &result.Stats)

	after := p.cacheStats()
	result.Stats.CacheHits = after.Hits - before.Hits
	result.Stats.CacheMisses = after.Misses - before.Misses

	p.logDone(result.Stats)
	return result
}

// Search builds the query for languages and runs it. The returned slice is
// never nil.
func (p *Pipeline) Search(ctx context.Context, languages []string) ([]types.RawIssue, error) {
	issues, err := p.searcher.SearchIssues(ctx, query.Build(languages))
	if issues == nil {
		issues = []types.RawIssue{}
	}
	return issues, err
}

// Enrich resolves the issue's repository and classifies it. A nil issue is
// returned with an error wrapping types.ErrNotCurated when it must be
// skipped. A degraded classification still yields the curated issue, with
// an error wrapping types.ErrClassificationDegraded alongside it.
func (p *Pipeline) Enrich(ctx context.Context, issue types.RawIssue) (*types.CuratedIssue, error) {
	if !issue.HasRepository() {
		return nil, fmt.Errorf("%w: %w", types.ErrNotCurated, ErrMissingRepository)
	}

	repo, err := p.repos.GetOrFetch(ctx, issue.RepositoryURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", types.ErrNotCurated, ErrRepositoryUnavailable, err)
	}

	analysis, classifyErr := p.classify(ctx, issue)
	curated := types.NewCuratedIssue(issue, repo, analysis)

	return &curated, classifyErr
}

// SkipReason names why an issue was left out, for logs and activity results
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingRepository):
		return "missing_repository"
	case errors.Is(err, ErrRepositoryUnavailable):
		return "repository_unavailable"
	case errors.Is(err, ErrEnrichPanic):
		return "panic"
	default:
		return "unknown"
	}
}

// enrichAll fans issues out to the worker pool and returns the first
// maxCurated curated issues in search order. Dispatch stops once the
// contiguous finished prefix already holds maxCurated curated issues, so at
// most workers-1 issues are enriched beyond what a sequential pass would do.
func (p *Pipeline) enrichAll(ctx context.Context, issues []types.RawIssue, stats *Stats) []types.CuratedIssue {
	results := make([]*types.CuratedIssue, len(issues))
	degraded := make([]bool, len(issues))
	finished := make([]bool, len(issues))

	var (
		mu            sync.Mutex
		next          int
		prefix        int
		prefixCurated int
	)

	claim := func() (int, bool) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(issues) || prefixCurated >= p.maxCurated {
			return 0, false
		}
		i := next
		next++
		stats.Attempted++
		return i, true
	}

	complete := func(i int, curated *types.CuratedIssue, err error) {
		mu.Lock()
		defer mu.Unlock()

		results[i] = curated
		degraded[i] = curated != nil && err != nil
		finished[i] = true
		p.record(stats, issues[i], curated, err)

		for prefix < len(issues) && finished[prefix] {
			if results[prefix] != nil {
				prefixCurated++
			}
			prefix++
		}
	}

	workers := p.workers
	if workers > len(issues) {
		workers = len(issues)
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				i, ok := claim()
				if !ok {
					return nil
				}
				curated, err := p.enrichSafely(ctx, issues[i])
				complete(i, curated, err)
			}
		})
	}
	_ = g.Wait()

	out := make([]types.CuratedIssue, 0, min(p.maxCurated, len(issues)))
	for i, curated := range results {
		if curated == nil {
			continue
		}
		out = append(out, *curated)
		if degraded[i] {
			stats.Degraded++
		}
		if len(out) == p.maxCurated {
			break
		}
	}
	stats.Curated = len(out)

	return out
}

// record updates stats for one finished issue; callers hold the pool lock
func (p *Pipeline) record(stats *Stats, issue types.RawIssue, curated *types.CuratedIssue, err error) {
	if curated == nil {
		switch {
		case errors.Is(err, ErrMissingRepository):
			stats.SkippedNoRepository++
		case errors.Is(err, ErrRepositoryUnavailable):
			stats.SkippedRepositoryUnavailable++
		default:
			stats.SkippedPanic++
		}
		p.logger.Info("skipping issue",
			zap.String("issue_url", issue.URL),
			zap.String("reason", SkipReason(err)),
			zap.Error(err),
		)
		return
	}

	if err != nil {
		p.logger.Warn("classification degraded",
			zap.String("issue_url", issue.URL),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) enrichSafely(ctx context.Context, issue types.RawIssue) (curated *types.CuratedIssue, err error) {
	defer func() {
		if r := recover(); r != nil {
			curated = nil
			err = fmt.Errorf("%w: %w: %v", types.ErrNotCurated, ErrEnrichPanic, r)
		}
	}()
	return p.Enrich(ctx, issue)
}

func (p *Pipeline) classify(ctx context.Context, issue types.RawIssue) (analysis types.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			analysis = types.Analysis{
				Classification: types.ClassificationUnknown,
				Summary:        types.UnknownFallbackSummary,
			}
			err = fmt.Errorf("%w: classifier panicked: %v", types.ErrClassificationDegraded, r)
		}
	}()
	return p.classifier.Classify(ctx, issue)
}

func (p *Pipeline) cacheStats() cache.Stats {
	if reporter, ok := p.repos.(cacheStatsReporter); ok {
		return reporter.Stats()
	}
	return cache.Stats{}
}

func (p *Pipeline) logDone(stats Stats) {
	p.logger.Info("curation state",
		zap.String("state", StateDone),
		zap.Int("issues_found", stats.IssuesFound),
		zap.Int("attempted", stats.Attempted),
		zap.Int("curated", stats.Curated),
		zap.Int("skipped_no_repository", stats.SkippedNoRepository),
		zap.Int("skipped_repository_unavailable", stats.SkippedRepositoryUnavailable),
		zap.Int("skipped_panic", stats.SkippedPanic),
		zap.Int("degraded", stats.Degraded),
		zap.Int64("cache_hits", stats.CacheHits),
		zap.Int64("cache_misses", stats.CacheMisses),
	)
}
