package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"content-summarizer/internal/resilience/circuitbreaker"
	"content-summarizer/internal/resilience/retry"
)

const (
	// DefaultHuggingFaceModel is the pretrained seq2seq summarization model.
	DefaultHuggingFaceModel = "facebook/bart-large-cnn"

	// DefaultHuggingFaceBaseURL is the serverless Inference API endpoint.
	DefaultHuggingFaceBaseURL = "https://router.huggingface.co/hf-inference/models"

	// maxErrorBody bounds how much of an error response is kept in the error message.
	maxErrorBody = 512
)

// HuggingFace runs a summarization pipeline on the Hugging Face Inference API.
type HuggingFace struct {
	reliableCall
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHuggingFace creates a Hugging Face backend. The API key may be empty
// for self-hosted inference servers reached through opts.BaseURL.
func NewHuggingFace(opts Options) *HuggingFace {
	opts = opts.withDefaults(DefaultHuggingFaceModel)

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}

	slog.Info("initialized huggingface summarizer",
		slog.String("model", opts.Model),
		slog.String("base_url", baseURL),
		slog.Int("max_length", opts.Generation.MaxLength),
		slog.Int("min_length", opts.Generation.MinLength),
		slog.Int("num_beams", opts.Generation.NumBeams))

	return &HuggingFace{
		reliableCall: newReliableCall("huggingface", opts, circuitbreaker.HuggingFaceAPIConfig()),
		client:       &http.Client{},
		baseURL:      baseURL,
		apiKey:       opts.APIKey,
	}
}

type hfParameters struct {
	MaxLength     int     `json:"max_length"`
	MinLength     int     `json:"min_length"`
	LengthPenalty float64 `json:"length_penalty"`
	NumBeams      int     `json:"num_beams"`
	EarlyStopping bool    `json:"early_stopping"`
	DoSample      bool    `json:"do_sample"`
	Truncation    string  `json:"truncation"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Summarize implements summary.Model.
func (h *HuggingFace) Summarize(ctx context.Context, input string) (string, error) {
	return h.run(ctx, input, func(ctx context.Context) (string, error) {
		return h.doSummarize(ctx, input)
	})
}

// doSummarize performs the actual API call without retry or circuit breaker.
func (h *HuggingFace) doSummarize(ctx context.Context, input string) (string, error) {
	gen := h.generation
	payload, err := json.Marshal(hfRequest{
		Inputs: input,
		Parameters: hfParameters{
			MaxLength:     gen.MaxLength,
			MinLength:     gen.MinLength,
			LengthPenalty: gen.LengthPenalty,
			NumBeams:      gen.NumBeams,
			EarlyStopping: gen.EarlyStopping,
			DoSample:      false,
			Truncation:    "only_first",
		},
		Options: hfOptions{WaitForModel: true, UseCache: true},
	})
	if err != nil {
		return "", fmt.Errorf("encode huggingface request: %w", err)
	}

	endpoint := h.baseURL + "/" + h.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build huggingface request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface api error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read huggingface response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newHFHTTPError(resp, body)
	}

	var summaries []hfSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return "", fmt.Errorf("decode huggingface response: %w", err)
	}
	if len(summaries) == 0 {
		return "", fmt.Errorf("huggingface api returned empty response")
	}

	return summaries[0].SummaryText, nil
}

// newHFHTTPError converts a non-2xx response into a retry.HTTPError. A model
// that is still loading reports estimated_time, used as a Retry-After hint.
func newHFHTTPError(resp *http.Response, body []byte) *retry.HTTPError {
	httpErr := &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
	}

	var apiErr hfError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		httpErr.Message = apiErr.Error
		if httpErr.RetryAfter == 0 && apiErr.EstimatedTime > 0 {
			httpErr.RetryAfter = time.Duration(apiErr.EstimatedTime * float64(time.Second))
		}
	} else if len(body) > 0 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		httpErr.Message = msg
	}

	return httpErr
}
