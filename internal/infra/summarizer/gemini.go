package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"content-summarizer/internal/resilience/circuitbreaker"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini implements summary.Model using Google's Gemini API.
type Gemini struct {
	reliableCall
	client *genai.Client
}

// NewGemini creates a Gemini backend. Close releases the underlying client.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	opts = opts.withDefaults(DefaultGeminiModel)

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.BaseURL))
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	slog.Info("initialized gemini summarizer",
		slog.String("model", opts.Model),
		slog.Int("max_length", opts.Generation.MaxLength))

	return &Gemini{
		reliableCall: newReliableCall("gemini", opts, circuitbreaker.GeminiAPIConfig()),
		client:       client,
	}, nil
}

// Summarize implements summary.Model.
func (g *Gemini) Summarize(ctx context.Context, input string) (string, error) {
	return g.run(ctx, input, func(ctx context.Context) (string, error) {
		return g.doSummarize(ctx, input)
	})
}

func (g *Gemini) doSummarize(ctx context.Context, input string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0)
	model.SetMaxOutputTokens(int32(g.generation.MaxLength * 2))

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(g.generation, input)))
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	return geminiText(resp)
}

// Close releases resources held by the client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// geminiText concatenates the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini api returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini api returned no content")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			parts = append(parts, string(t))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini api returned no text parts")
	}

	return strings.Join(parts, ""), nil
}
