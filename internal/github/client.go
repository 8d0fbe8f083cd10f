package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/firstissue/pkg/types"
)

const (
	// DefaultBaseURL is the public GitHub REST API
	DefaultBaseURL = "https://api.github.com/"

	// SearchPageSize is the single page of results requested per search
	SearchPageSize = 50
)

// Client wraps the GitHub REST API calls the curation pipeline needs
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
	apiHost   string
}

// NewClient creates a new GitHub client. An empty accessToken sends
// unauthenticated requests; an empty baseURL targets DefaultBaseURL.
func NewClient(accessToken, baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}
	if accessToken != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: accessToken},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = timeout
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse github base url: %w", err)
	}

	apiClient := github.NewClient(httpClient)
	apiClient.BaseURL = u

	return &Client{
		apiClient: apiClient,
		logger:    logger,
		apiHost:   u.Host,
	}, nil
}

// SearchIssues runs one issue search, most recently updated first.
// The returned slice is never nil: on failure it is empty and the error
// wraps types.ErrTransport or types.ErrMalformedResponse.
func (c *Client) SearchIssues(ctx context.Context, q string) ([]types.RawIssue, error) {
	c.logger.Info("searching issues", zap.String("query", q))

	opts := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: SearchPageSize,
		},
	}

	result, _, err := c.apiClient.Search.Issues(ctx, q, opts)
	if err != nil {
		return []types.RawIssue{}, fmt.Errorf("failed to search issues: %w", wrapError(err))
	}

	issues := make([]types.RawIssue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		if len(issues) == SearchPageSize {
			break
		}
		issues = append(issues, toRawIssue(issue))
	}

	c.logger.Info("search returned issues",
		zap.Int("count", len(issues)),
		zap.Int("total", result.GetTotal()),
	)

	return issues, nil
}

// GetRepository fetches repository metadata from the API URL an issue
// references. URLs outside the configured API host are refused so the
// access token never leaves it.
func (c *Client) GetRepository(ctx context.Context, repositoryURL string) (*types.RepositoryMetadata, error) {
	u, err := url.Parse(repositoryURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid repository url %q: %v", types.ErrTransport, repositoryURL, err)
	}
	if u.Host != c.apiHost {
		return nil, fmt.Errorf("%w: repository url %q is not on %s", types.ErrTransport, repositoryURL, c.apiHost)
	}

	req, err := c.apiClient.NewRequest(http.MethodGet, repositoryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository request: %w", err)
	}

	var repo github.Repository
	if _, err := c.apiClient.Do(ctx, req, &repo); err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", wrapError(err))
	}

	if repo.GetFullName() == "" {
		return nil, fmt.Errorf("%w: repository %s has no full_name", types.ErrMalformedResponse, repositoryURL)
	}

	c.logger.Debug("fetched repository",
		zap.String("repository_url", repositoryURL),
		zap.String("full_name", repo.GetFullName()),
		zap.Int("stars", repo.GetStargazersCount()),
	)

	return &types.RepositoryMetadata{
		FullName: repo.GetFullName(),
		Stars:    repo.GetStargazersCount(),
		HTMLURL:  repo.GetHTMLURL(),
	}, nil
}

// wrapError tags an API error with its kind from the shared taxonomy
func wrapError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", types.ErrMalformedResponse, err)
	}
	return fmt.Errorf("%w: %w", types.ErrTransport, err)
}

func toRawIssue(issue *github.Issue) types.RawIssue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return types.RawIssue{
		ID:            issue.GetID(),
		Number:        issue.GetNumber(),
		URL:           issue.GetHTMLURL(),
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		Labels:        labels,
		UpdatedAt:     issue.GetUpdatedAt().Time,
		RepositoryURL: issue.GetRepositoryURL(),
	}
}
