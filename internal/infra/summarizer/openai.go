package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"content-summarizer/internal/resilience/circuitbreaker"
	"content-summarizer/internal/resilience/retry"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI implements summary.Model using OpenAI's chat completion API.
type OpenAI struct {
	reliableCall
	client *openai.Client
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	opts = opts.withDefaults(DefaultOpenAIModel)

	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}

	slog.Info("initialized openai summarizer",
		slog.String("model", opts.Model),
		slog.Int("max_length", opts.Generation.MaxLength))

	return &OpenAI{
		reliableCall: newReliableCall("openai", opts, circuitbreaker.OpenAIAPIConfig()),
		client:       openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Summarize implements summary.Model.
func (o *OpenAI) Summarize(ctx context.Context, input string) (string, error) {
	return o.run(ctx, input, func(ctx context.Context) (string, error) {
		return o.doSummarize(ctx, input)
	})
}

// doSummarize performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doSummarize(ctx context.Context, input string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(o.generation, input),
		}},
		// Roughly 4 model tokens per 3 words leaves room for the upper bound.
		MaxTokens: o.generation.MaxLength * 2,
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", openAIHTTPError(err))
	}

	// Validate response structure (safety check to prevent panic on array access)
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}

	return resp.Choices[0].Message.Content, nil
}

// openAIHTTPError exposes the status code of an OpenAI error to the retry policy.
func openAIHTTPError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
