package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/clintrovert/firstissue/pkg/types"
)

const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel       = "meta-llama/llama-3-8b-instruct"
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 250
	DefaultTimeout     = 30 * time.Second

	emptyBodyPlaceholder = "(no description provided)"
	summaryPrefix        = "Summary:"
)

// Config holds the model endpoint and sampling parameters
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration

	// RequestsPerSecond paces outgoing calls; zero or less means unlimited
	RequestsPerSecond float64
}

// AIClassifier asks an OpenAI-compatible chat model to classify issues
type AIClassifier struct {
	client      *openai.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewAIClassifier creates a new AI classifier
func NewAIClassifier(cfg Config, logger *zap.Logger) *AIClassifier {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &AIClassifier{
		client:      openai.NewClientWithConfig(clientConfig),
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
}

// Classify sends one completion request for the issue. The returned
// analysis is always usable; on model failure it is the error fallback and
// the error wraps types.ErrClassificationDegraded.
func (c *AIClassifier) Classify(ctx context.Context, issue types.RawIssue) (types.Analysis, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return errorFallback(), fmt.Errorf("%w: failed to wait for model slot: %w", types.ErrClassificationDegraded, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(issue),
				},
			},
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		},
	)
	if err != nil {
		return errorFallback(), fmt.Errorf("%w: failed to create chat completion: %w", types.ErrClassificationDegraded, err)
	}

	if len(resp.Choices) == 0 {
		return errorFallback(), fmt.Errorf("%w: no response from model", types.ErrClassificationDegraded)
	}

	analysis := parseResponse(resp.Choices[0].Message.Content)

	c.logger.Debug("classified issue",
		zap.String("issue_url", issue.URL),
		zap.String("classification", string(analysis.Classification)),
	)

	return analysis, nil
}

func buildPrompt(issue types.RawIssue) string {
	body := strings.TrimSpace(issue.Body)
	if body == "" {
		body = emptyBodyPlaceholder
	}

	var sb strings.Builder

	sb.WriteString("You are helping a first-time open source contributor pick an issue to work on.\n")
	sb.WriteString("Decide whether the following GitHub issue is a good first issue: small in scope, ")
	sb.WriteString("clearly described, and approachable without deep knowledge of the codebase.\n\n")

	sb.WriteString("Title: " + issue.Title + "\n")
	sb.WriteString("Body:\n" + body + "\n\n")

	sb.WriteString("Respond in exactly two lines:\n")
	sb.WriteString("Classification: <Good|Not Good>\n")
	sb.WriteString("Summary: <one paragraph explaining your decision to a beginner>\n")

	return sb.String()
}

// parseResponse turns the two-line model answer into an analysis. Anything
// that does not fit the format degrades to Not Good with the generic summary.
func parseResponse(response string) types.Analysis {
	parts := strings.SplitN(strings.TrimSpace(response), "\n", 2)
	if len(parts) != 2 {
		return types.Analysis{
			Classification: types.ClassificationNotGood,
			Summary:        types.GenericFallbackSummary,
		}
	}

	analysis := types.Analysis{
		Classification: parseLabel(parts[0]),
		Summary:        types.GenericFallbackSummary,
	}

	// models often put a blank line between the two lines
	rest := strings.TrimSpace(parts[1])
	if strings.HasPrefix(rest, summaryPrefix) {
		if summary := strings.TrimSpace(strings.TrimPrefix(rest, summaryPrefix)); summary != "" {
			analysis.Summary = summary
		}
	}

	return analysis
}

// parseLabel matches the whole label token, so "Not Good" never reads as Good
func parseLabel(line string) types.Classification {
	label := strings.ReplaceAll(line, "*", "")
	label = strings.TrimSpace(label)

	const prefix = "classification:"
	if len(label) >= len(prefix) && strings.EqualFold(label[:len(prefix)], prefix) {
		label = label[len(prefix):]
	}

	label = strings.Trim(label, " \t\r#[](){}<>\"'`.,:;!")
	label = strings.Join(strings.Fields(strings.ToLower(label)), " ")

	if label == "good" {
		return types.ClassificationGood
	}
	return types.ClassificationNotGood
}

func errorFallback() types.Analysis {
	return types.Analysis{
		Classification: types.ClassificationNotGood,
		Summary:        types.ErrorFallbackSummary,
	}
}
