package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	if cb == nil {
		t.Fatal("expected circuit breaker, got nil")
	}
	if cb.Name() != "test-circuit" {
		t.Errorf("expected name='test-circuit', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_Execute_Success(t *testing.T) {
	cb := New(testConfig())

	result, err := cb.Execute(func() (interface{}, error) {
		return "summary", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "summary" {
		t.Errorf("expected result='summary', got %v", result)
	}
	if cb.Counts().TotalSuccesses != 1 {
		t.Errorf("expected 1 success, got %d", cb.Counts().TotalSuccesses)
	}
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := New(testConfig())
	testErr := errors.New("model unavailable")

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
		if !errors.Is(err, testErr) {
			t.Errorf("request %d: expected test error, got %v", i, err)
		}
	}

	if !cb.IsOpen() {
		t.Fatalf("expected state=Open after 5/5 failures, got %v", cb.State())
	}

	_, err := cb.Execute(func() (interface{}, error) {
		t.Error("function should not be called when circuit is open")
		return nil, nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
	if !IsUnavailable(fmt.Errorf("wrapped: %w", err)) {
		t.Error("expected IsUnavailable to see through wrapping")
	}
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig())
	testErr := errors.New("model unavailable")
	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, testErr })
	}
	if !cb.IsOpen() {
		t.Fatalf("circuit should be open, got %v", cb.State())
	}

	time.Sleep(150 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (interface{}, error) { return "ok", nil }); err != nil {
			t.Fatalf("expected success in half-open state, got %v", err)
		}
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected Closed after successful probes, got %v", cb.State())
	}
}

func TestCircuitBreaker_CanceledCallsDoNotTrip(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 10; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, fmt.Errorf("client went away: %w", context.Canceled)
		})
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected Closed, canceled calls must not count as failures, got %v", cb.State())
	}
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cfg := testConfig()
	cfg.MinRequests = 10
	cb := New(cfg)

	for i := 0; i < 9; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("fail") })
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected Closed below MinRequests, got %v", cb.State())
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
	}{
		{name: "default", cfg: DefaultConfig("x"), wantName: "x"},
		{name: "huggingface", cfg: HuggingFaceAPIConfig(), wantName: "huggingface-api"},
		{name: "claude", cfg: ClaudeAPIConfig(), wantName: "claude-api"},
		{name: "openai", cfg: OpenAIAPIConfig(), wantName: "openai-api"},
		{name: "gemini", cfg: GeminiAPIConfig(), wantName: "gemini-api"},
		{name: "page fetch", cfg: PageFetchConfig(), wantName: "page-fetch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Name != tt.wantName {
				t.Errorf("expected Name=%q, got %q", tt.wantName, tt.cfg.Name)
			}
			if tt.cfg.MaxRequests == 0 || tt.cfg.MinRequests == 0 {
				t.Error("expected non-zero request budgets")
			}
			if tt.cfg.FailureThreshold <= 0 || tt.cfg.FailureThreshold > 1 {
				t.Errorf("expected threshold in (0,1], got %f", tt.cfg.FailureThreshold)
			}
		})
	}
}
