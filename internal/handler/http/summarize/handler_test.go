package summarize_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"content-summarizer/internal/domain/entity"
	"content-summarizer/internal/handler/http/summarize"
	"content-summarizer/internal/infra/fetcher"
	"content-summarizer/internal/resilience/circuitbreaker"
	"content-summarizer/internal/usecase/extract"
	"content-summarizer/internal/usecase/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu   sync.Mutex
	got  []entity.Source
	err  error
	text string
}

func (s *stubRunner) Run(_ context.Context, src entity.Source) (*entity.SummaryResult, error) {
	s.mu.Lock()
	s.got = append(s.got, src)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &entity.SummaryResult{Summary: s.text, Source: src.Kind()}, nil
}

func (s *stubRunner) last() entity.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.got) == 0 {
		return nil
	}
	return s.got[len(s.got)-1]
}

type identityModel struct{}

func (identityModel) Summarize(_ context.Context, text string) (string, error) { return text, nil }

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/summarize_text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_InvalidInput(t *testing.T) {
	tests := map[string]string{
		"empty object":     `{}`,
		"unrelated keys":   `{"content":"x"}`,
		"all null":         `{"text":null,"pdfContent":null,"url":null}`,
		"text not string":  `{"text":42}`,
		"url not string":   `{"url":["https://example.com"]}`,
		"pdf not string":   `{"pdfContent":{"data":"x"}}`,
		"malformed json":   `{"text":`,
		"empty body":       ``,
		"array body":       `["text"]`,
		"json null body":   `null`,
		"wrong winner key": `{"text":false,"url":"https://example.com"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &stubRunner{}
			rec := post(t, summarize.Handler{Pipeline: runner}, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid input"}`, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Nil(t, runner.last(), "pipeline must not run")
		})
	}
}

func TestHandler_SourceSelection(t *testing.T) {
	tests := []struct {
		name string
		body string
		want entity.Source
	}{
		{name: "text", body: `{"text":"hello"}`, want: entity.TextSource{Text: "hello"}},
		{name: "empty text is present", body: `{"text":""}`, want: entity.TextSource{Text: ""}},
		{name: "pdf", body: `{"pdfContent":"data:application/pdf;base64,JVBER"}`, want: entity.PDFSource{DataURI: "data:application/pdf;base64,JVBER"}},
		{name: "url", body: `{"url":"https://example.com/a"}`, want: entity.URLSource{URL: "https://example.com/a"}},
		{name: "text wins over all", body: `{"url":"https://example.com","pdfContent":"data:,x","text":"t"}`, want: entity.TextSource{Text: "t"}},
		{name: "pdf wins over url", body: `{"url":"https://example.com","pdfContent":"data:,x"}`, want: entity.PDFSource{DataURI: "data:,x"}},
		{name: "null text falls through", body: `{"text":null,"url":"https://example.com"}`, want: entity.URLSource{URL: "https://example.com"}},
		{name: "extra keys ignored", body: `{"text":"x","lang":"en"}`, want: entity.TextSource{Text: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{text: "ok"}
			rec := post(t, summarize.Handler{Pipeline: runner}, tt.body)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, runner.last())
		})
	}
}

func TestHandler_Success(t *testing.T) {
	runner := &stubRunner{text: "A short summary."}
	rec := post(t, summarize.Handler{Pipeline: runner}, `{"text":"A long article."}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"summary":"A short summary."}`, rec.Body.String())
}

func TestHandler_IdentityPipelineEchoesText(t *testing.T) {
	pipeline := summary.NewPipeline(
		extract.NewService(nil, nil),
		summary.NewService(identityModel{}),
		nil,
	)
	h := summarize.Handler{Pipeline: pipeline}

	rec := post(t, h, `{"text":"The quick brown fox jumps over the lazy dog."}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":"The quick brown fox jumps over the lazy dog."}`, rec.Body.String())

	rec = post(t, h, `{"text":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":""}`, rec.Body.String())
}

func TestHandler_UnresolvableHostIsFetchFailure(t *testing.T) {
	pipeline := summary.NewPipeline(
		extract.NewService(nil, fetcher.NewPageFetcher(fetcher.DefaultConfig())),
		summary.NewService(identityModel{}),
		nil,
	)

	rec := post(t, summarize.Handler{Pipeline: pipeline}, `{"url":"http://unresolvable.invalid/article"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"could not fetch url"}`, rec.Body.String())
}

func TestHandler_ConcurrentRequestsGetTheirOwnResult(t *testing.T) {
	pipeline := summary.NewPipeline(
		extract.NewService(nil, nil),
		summary.NewService(identityModel{}),
		nil,
	)
	h := summarize.Handler{Pipeline: pipeline}

	const n = 32
	var wg sync.WaitGroup
	results := make([]string, n)
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"text":"request number %d"}`, i)
			req := httptest.NewRequest(http.MethodPost, "/summarize_text", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			var resp summarize.Response
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			codes[i] = rec.Code
			results[i] = resp.Summary
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.Equal(t, http.StatusOK, codes[i])
		assert.Equal(t, fmt.Sprintf("request number %d", i), results[i])
	}
}

func TestHandler_ErrorMapping(t *testing.T) {
	const (
		textBody = `{"text":"some text"}`
		pdfBody  = `{"pdfContent":"data:application/pdf;base64,AAAA"}`
		urlBody  = `{"url":"https://example.com/page"}`
	)

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "bad pdf encoding",
			body:       pdfBody,
			err:        fmt.Errorf("extract pdf: %w", extract.ErrDecode),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid PDF encoding",
		},
		{
			name:       "unreadable pdf",
			body:       pdfBody,
			err:        fmt.Errorf("extract pdf: %w: xref table not found", extract.ErrParse),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "could not read PDF",
		},
		{
			name:       "unparseable page",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w", extract.ErrParse),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "could not extract text from page",
		},
		{
			name:       "bad scheme",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w", extract.ErrInvalidURL),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid url",
		},
		{
			name:       "private address",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w", extract.ErrPrivateIP),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid url",
		},
		{
			name:       "upstream non-2xx",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w: HTTP 404", extract.ErrFetch),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "could not fetch url",
		},
		{
			name:       "too many redirects",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w: %w", extract.ErrFetch, extract.ErrTooManyRedirects),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "could not fetch url",
		},
		{
			name:       "page too large",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w", extract.ErrBodyTooLarge),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "could not fetch url",
		},
		{
			name:       "fetch circuit open",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w: %w", extract.ErrFetch, circuitbreaker.ErrOpen),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "could not fetch url",
		},
		{
			name:       "fetch timeout",
			body:       urlBody,
			err:        fmt.Errorf("extract url: %w: %w", extract.ErrFetch, extract.ErrTimeout),
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    "request timeout",
		},
		{
			name:       "request deadline",
			body:       textBody,
			err:        fmt.Errorf("summarize text: %w: %w", summary.ErrModel, context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    "request timeout",
		},
		{
			name:       "summarizer circuit open",
			body:       textBody,
			err:        fmt.Errorf("summarize text: %w: huggingface api unavailable: %w", summary.ErrModel, circuitbreaker.ErrOpen),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "summarizer unavailable",
		},
		{
			name:       "half-open probe budget spent",
			body:       textBody,
			err:        fmt.Errorf("summarize text: %w: %w", summary.ErrModel, circuitbreaker.ErrTooManyRequests),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "summarizer unavailable",
		},
		{
			name:       "model failure",
			body:       textBody,
			err:        fmt.Errorf("summarize text: %w: huggingface summarize failed: boom", summary.ErrModel),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "summarization failed",
		},
		{
			name:       "unexpected error",
			body:       textBody,
			err:        errors.New("something odd with key sk-ant-secret"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, summarize.Handler{Pipeline: &stubRunner{err: tt.err}}, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"error": tt.wantMsg}, body)
		})
	}
}

func TestHandler_BodyTooLarge(t *testing.T) {
	h := summarize.Handler{Pipeline: &stubRunner{text: "x"}}
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		h.ServeHTTP(w, r)
	})

	rec := post(t, limited, `{"text":"`+strings.Repeat("a", 64)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rec.Body.String())
}

func TestHandler_ClientCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &stubRunner{err: fmt.Errorf("summarize text: %w: %w", summary.ErrModel, context.Canceled)}
	req := httptest.NewRequest(http.MethodPost, "/summarize_text", strings.NewReader(`{"text":"x"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	summarize.Handler{Pipeline: runner}.ServeHTTP(rec, req)

	assert.Empty(t, rec.Body.String())
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	var wrapped bool
	summarize.Register(mux, &stubRunner{text: "ok"}, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped = true
			next.ServeHTTP(w, r)
		})
	})

	rec := post(t, mux, `{"text":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, wrapped)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summarize_text", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
