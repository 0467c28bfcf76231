package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_String(t *testing.T) {
	tests := []struct {
		name   string
		policy *Policy
		want   string
	}{
		{name: "empty", policy: NewPolicy(), want: ""},
		{
			name:   "fixed order regardless of insertion",
			policy: NewPolicy().Directive("style-src", "'self'").Directive("default-src", "'none'"),
			want:   "default-src 'none'; style-src 'self'",
		},
		{
			name:   "unknown directives sorted after known",
			policy: NewPolicy().Directive("worker-src", "'self'").Directive("manifest-src", "'self'").Directive("img-src", "data:"),
			want:   "img-src data:; manifest-src 'self'; worker-src 'self'",
		},
		{
			name:   "multiple sources",
			policy: NewPolicy().Directive("img-src", "'self'", "data:", "https://cdn.example.com"),
			want:   "img-src 'self' data: https://cdn.example.com",
		},
		{
			name:   "empty sources removes directive",
			policy: NewPolicy().Directive("img-src", "'self'").Directive("img-src"),
			want:   "",
		},
		{
			name:   "later value wins",
			policy: NewPolicy().Directive("script-src", "'unsafe-inline'").Directive("script-src", "'self'"),
			want:   "script-src 'self'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.String())
		})
	}
}

func TestPagePolicy(t *testing.T) {
	got := PagePolicy().String()

	assert.Contains(t, got, "default-src 'self'")
	assert.Contains(t, got, "connect-src 'self'")
	assert.Contains(t, got, "object-src 'none'")
	assert.Contains(t, got, "frame-ancestors 'none'")
	assert.NotContains(t, got, "unsafe-inline")
	assert.Equal(t, "Content-Security-Policy", PagePolicy().HeaderName())
	assert.Equal(t, "Content-Security-Policy-Report-Only", PagePolicy().ReportOnly(true).HeaderName())
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name       string
		policy     *Policy
		wantHeader string
	}{
		{name: "enforced", policy: PagePolicy(), wantHeader: "Content-Security-Policy"},
		{name: "report only", policy: PagePolicy().ReportOnly(true), wantHeader: "Content-Security-Policy-Report-Only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := SecurityHeaders(tt.policy)(okHandler())
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summarize", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.policy.String(), rec.Header().Get(tt.wantHeader))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
		})
	}
}

func TestSecurityHeaders_NilPolicy(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(nil)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy-Report-Only"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
