// Package llmclient asks a large language model for a deep authenticity
// analysis of crime reports the verification cascade could not settle with
// its faster tiers. All requests pass through a shared rate limiter and
// rate-limited failures are retried with exponential backoff.
package llmclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/retry"
)

// ErrParse indicates the model responded but no usable JSON verdict could be
// extracted from its output.
var ErrParse = errors.New("could not parse model response")

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024

	// One request per second with a small burst keeps well under the API
	// quota even when several reports arrive together.
	defaultRequestsPerSecond = 1
	defaultBurst             = 3
)

// AnalysisRequest carries everything the model sees about one report.
type AnalysisRequest struct {
	ReportText       string
	Location         string
	TimeOfOccurrence string
	ReporterID       string
	Credibility      int
}

// Analysis is the model's structured verdict.
type Analysis struct {
	IsFake             bool     `json:"is_fake"`
	Confidence         float64  `json:"confidence"`
	Reasoning          string   `json:"reasoning"`
	CredibilityPenalty int      `json:"credibility_penalty"`
	CanUpload          bool     `json:"can_upload"`
	RedFlags           []string `json:"red_flags_found"`
	Severity           string   `json:"severity"`
}

// Config holds LLM client settings.
type Config struct {
	APIKey            string
	Model             string
	MaxTokens         int64
	RequestsPerSecond float64
	Burst             int
	Retry             retry.Config
}

// Client is the LLM analysis tier. Safe for concurrent use.
type Client struct {
	anthropic anthropic.Client
	model     anthropic.Model
	maxTokens int64
	limiter   *rate.Limiter
	retryCfg  retry.Config
	log       logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialDelay == 0 {
		cfg.Retry = retry.DefaultConfig()
	}

	return &Client{
		anthropic: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		retryCfg:  cfg.Retry,
		log:       log,
	}
}

// Analyze sends the report for deep analysis and parses the JSON verdict.
// Rate-limit errors are retried per the configured schedule; parse failures
// wrap ErrParse so the cascade can fall back to heuristics.
func (c *Client) Analyze(ctx context.Context, req *AnalysisRequest) (*Analysis, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var raw string
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		text, callErr := c.complete(ctx, buildPrompt(req))
		if callErr != nil {
			return callErr
		}
		raw = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		return nil, err
	}

	c.log.Debug("llm analysis complete",
		logger.Bool("is_fake", analysis.IsFake),
		logger.Float64("confidence", analysis.Confidence),
	)
	return analysis, nil
}

func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	message, err := c.anthropic.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in response", ErrParse)
}
