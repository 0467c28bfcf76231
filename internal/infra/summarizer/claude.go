package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"content-summarizer/internal/resilience/circuitbreaker"
	"content-summarizer/internal/resilience/retry"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements summary.Model using Anthropic's Messages API.
type Claude struct {
	reliableCall
	client anthropic.Client
}

// NewClaude creates a Claude backend.
func NewClaude(opts Options) (*Claude, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("claude: %w", ErrMissingAPIKey)
	}
	opts = opts.withDefaults(DefaultClaudeModel)

	// Retries are handled by reliableCall so the breaker sees every attempt.
	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	slog.Info("initialized claude summarizer",
		slog.String("model", opts.Model),
		slog.Int("max_length", opts.Generation.MaxLength))

	return &Claude{
		reliableCall: newReliableCall("claude", opts, circuitbreaker.ClaudeAPIConfig()),
		client:       anthropic.NewClient(clientOpts...),
	}, nil
}

// Summarize implements summary.Model.
func (c *Claude) Summarize(ctx context.Context, input string) (string, error) {
	return c.run(ctx, input, func(ctx context.Context) (string, error) {
		return c.doSummarize(ctx, input)
	})
}

// doSummarize performs the actual API call without retry or circuit breaker.
func (c *Claude) doSummarize(ctx context.Context, input string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.generation.MaxLength * 2),
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(c.generation, input)),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", claudeHTTPError(err))
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	return textBlock.Text, nil
}

// claudeHTTPError exposes the status code of an Anthropic error to the retry policy.
func claudeHTTPError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		httpErr := &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		if apiErr.Response != nil {
			httpErr.RetryAfter = retry.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return httpErr
	}
	return err
}
