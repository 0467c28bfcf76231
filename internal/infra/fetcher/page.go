package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"content-summarizer/internal/resilience/circuitbreaker"
	"content-summarizer/internal/usecase/extract"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"
)

// PageFetcher implements extract.PageFetcher.
//
// The text of a page is the text of every <p> element in document order
// joined by a single space. Pages without any <p> element fall back to a
// readability extraction of the main content.
type PageFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewPageFetcher creates a page fetcher with SSRF protection, size limits
// and a circuit breaker around upstream failures.
func NewPageFetcher(config Config) *PageFetcher {
	f := &PageFetcher{
		config:         config,
		circuitBreaker: circuitbreaker.New(circuitbreaker.PageFetchConfig()),
	}

	dialer := &net.Dialer{Timeout: config.Timeout}
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialContext:       dialer.DialContext,
		ForceAttemptHTTP2: true,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	if config.DenyPrivateIPs {
		// Through a proxy the dial check would see the proxy, not the page.
		dialer.Control = denyPrivateDial
		transport.Proxy = nil
	}

	f.client = &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("%w: stopped after %d redirects", extract.ErrTooManyRedirects, config.MaxRedirects)
			}
			// Redirect targets get the same SSRF check as the original URL.
			if _, err := validateURL(req.Context(), req.URL.String(), config.DenyPrivateIPs); err != nil {
				return err
			}
			return nil
		},
	}

	return f
}

// CircuitBreaker exposes the breaker for health reporting.
func (f *PageFetcher) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return f.circuitBreaker
}

// fetchOutcome carries errors caused by the page itself (4xx, oversized body,
// unparseable markup) past the breaker so they do not count as outages.
type fetchOutcome struct {
	text string
	err  error
}

// FetchText downloads urlStr and returns its paragraph text.
func (f *PageFetcher) FetchText(ctx context.Context, urlStr string) (string, error) {
	pageURL, err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs)
	if err != nil {
		return "", err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		text, outage, err := f.doFetch(ctx, pageURL)
		if err != nil && !outage {
			return fetchOutcome{err: err}, nil
		}
		return fetchOutcome{text: text}, err
	})
	if err != nil {
		if circuitbreaker.IsUnavailable(err) {
			slog.WarnContext(ctx, "page fetch circuit breaker open, request rejected",
				slog.String("host", pageURL.Host),
				slog.String("state", f.circuitBreaker.State().String()))
			return "", fmt.Errorf("%w: %w", extract.ErrFetch, err)
		}
		return "", err
	}

	out := result.(fetchOutcome)
	return out.text, out.err
}

// doFetch performs the request. outage reports whether err reflects an
// upstream failure (network error, timeout, 5xx) rather than a bad page.
func (f *PageFetcher) doFetch(ctx context.Context, pageURL *url.URL) (text string, outage bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", extract.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", f.classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", resp.StatusCode >= 500, fmt.Errorf("%w: HTTP %d", extract.ErrFetch, resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return "", f.classifyTransportError(ctx, err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return "", false, fmt.Errorf("%w: %w: limit %d bytes", extract.ErrFetch, extract.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	text, err = extractParagraphs(toUTF8(body, resp.Header.Get("Content-Type")), resp.Request.URL)
	if err != nil {
		return "", false, err
	}
	return text, false, nil
}

// classifyTransportError maps an http.Client error onto the extract error
// set and reports whether it should count against the breaker.
func (f *PageFetcher) classifyTransportError(ctx context.Context, err error) (bool, error) {
	switch {
	case extract.IsRejectedURL(err):
		return false, unwrapURLError(err)
	case errors.Is(err, extract.ErrTooManyRedirects):
		return false, fmt.Errorf("%w: %w", extract.ErrFetch, unwrapURLError(err))
	case ctx.Err() != nil:
		return false, ctx.Err()
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true, fmt.Errorf("%w: %w: no response within %v", extract.ErrFetch, extract.ErrTimeout, f.config.Timeout)
	}
	return true, fmt.Errorf("%w: %v", extract.ErrFetch, err)
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// toUTF8 decodes body from the charset named in contentType or declared in
// the document, falling back to the raw bytes when the charset is unknown.
func toUTF8(body []byte, contentType string) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}

// extractParagraphs returns the text of every <p> element joined by " ".
// When the page has no <p> elements, the readability article text is used.
func extractParagraphs(body []byte, pageURL *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", extract.ErrParse, err)
	}

	paragraphs := doc.Find("p")
	if paragraphs.Length() > 0 {
		texts := paragraphs.Map(func(_ int, s *goquery.Selection) string {
			return s.Text()
		})
		return strings.Join(texts, " "), nil
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		// Not an article; a page without paragraphs has no text.
		return "", nil
	}
	return strings.TrimSpace(article.TextContent), nil
}
