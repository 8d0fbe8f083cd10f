// Package bootstrap builds the curation pipeline from configuration for
// the cmd/ binaries.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/cache"
	"github.com/clintrovert/firstissue/internal/classifier"
	"github.com/clintrovert/firstissue/internal/config"
	"github.com/clintrovert/firstissue/internal/curation"
	"github.com/clintrovert/firstissue/internal/github"
)

// NewPipeline wires the GitHub client, a fresh repository cache and the
// model classifier into a pipeline. The cache lives as long as the pipeline.
func NewPipeline(cfg *config.Config, logger *zap.Logger) (*curation.Pipeline, error) {
	if cfg.GitHubToken == "" {
		logger.Warn("GITHUB_TOKEN not set, searching unauthenticated")
	}
	if cfg.ModelAPIKey == "" {
		logger.Warn("OPENROUTER_API_KEY not set, classifications will fall back")
	}

	githubClient, err := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL, cfg.GitHubTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create github client: %w", err)
	}

	aiClassifier := classifier.NewAIClassifier(classifier.Config{
		APIKey:            cfg.ModelAPIKey,
		BaseURL:           cfg.ModelBaseURL,
		Model:             cfg.ModelName,
		Temperature:       cfg.ModelTemperature,
		MaxTokens:         cfg.ModelMaxTokens,
		Timeout:           cfg.ModelTimeout,
		RequestsPerSecond: cfg.ModelRPS,
	}, logger)

	repoCache := cache.NewRepoCache(githubClient, logger)

	return curation.NewPipeline(githubClient, repoCache, aiClassifier, curation.Options{
		MaxCurated: cfg.MaxResults,
		Workers:    cfg.Workers,
	}, logger), nil
}
