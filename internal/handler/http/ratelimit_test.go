package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const defaultTestTimeout = time.Second

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func sendFrom(h http.Handler, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/summarize_text", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Burst(t *testing.T) {
	tests := []struct {
		name           string
		burst          int
		requests       int
		expectedStatus []int
	}{
		{name: "burst of 3 all allowed", burst: 3, requests: 3, expectedStatus: []int{200, 200, 200}},
		{name: "4th request blocked", burst: 3, requests: 4, expectedStatus: []int{200, 200, 200, 429}},
		{name: "burst of 1", burst: 1, requests: 3, expectedStatus: []int{200, 429, 429}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(0.001, tt.burst, false, time.Minute)
			handler := rl.Limit(okHandler())

			for i := 0; i < tt.requests; i++ {
				rec := sendFrom(handler, "192.168.1.1:12345", nil)
				assert.Equal(t, tt.expectedStatus[i], rec.Code, "request %d", i+1)
			}
		})
	}
}

func TestRateLimiter_RejectionBody(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, false, time.Minute)
	handler := rl.Limit(okHandler())

	sendFrom(handler, "10.0.0.1:1", nil)
	rec := sendFrom(handler, "10.0.0.1:1", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_Refill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(1, 1, false, time.Minute)
	rl.now = func() time.Time { return now }
	handler := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.1:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "10.0.0.1:1", nil).Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.1:1", nil).Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, false, time.Minute)
	handler := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.1:1", nil).Code)
	assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.2:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "10.0.0.1:2", nil).Code)
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_ProxyHeaders(t *testing.T) {
	headers := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}

	t.Run("ignored when proxy is not trusted", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 1, false, time.Minute)
		handler := rl.Limit(okHandler())

		assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.9:1", headers).Code)
		assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "10.0.0.9:1", map[string]string{"X-Forwarded-For": "198.51.100.1"}).Code)
	})

	t.Run("used when proxy is trusted", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 1, true, time.Minute)
		handler := rl.Limit(okHandler())

		assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.9:1", headers).Code)
		assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.9:1", map[string]string{"X-Forwarded-For": "198.51.100.1"}).Code)
		assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "10.0.0.9:1", headers).Code)
	})
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(0.001, 5, false, time.Minute)
	handler := rl.Limit(okHandler())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sendFrom(handler, "10.0.0.1:1", nil).Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(1, 1, false, 10*time.Minute)
	rl.now = func() time.Time { return now }
	handler := rl.Limit(okHandler())

	sendFrom(handler, "10.0.0.1:1", nil)
	now = now.Add(5 * time.Minute)
	sendFrom(handler, "10.0.0.2:1", nil)
	now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_RunCleanupStopsOnCancel(t *testing.T) {
	rl := NewRateLimiter(1, 1, false, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(defaultTestTimeout):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "remote addr without port", remoteAddr: "192.0.2.1", want: "192.0.2.1"},
		{name: "x-forwarded-for first entry", remoteAddr: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, want: "203.0.113.5"},
		{name: "x-forwarded-for single", remoteAddr: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "2001:db8::1"}, want: "2001:db8::1"},
		{name: "invalid x-forwarded-for falls through", remoteAddr: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "203.0.113.9"}, want: "203.0.113.9"},
		{name: "invalid headers use remote addr", remoteAddr: "10.0.0.1:1", headers: map[string]string{"X-Real-IP": "nope"}, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, extractIP(req))
		})
	}
}
