// Package extract turns a summarization source (raw text, an encoded PDF or a
// web page URL) into plain text.
package extract

import (
	"context"
	"errors"
)

// PDFParser extracts the text of a PDF document.
//
// Implementations return the text of every page in page order joined with a
// single newline. Documents that cannot be parsed yield an error wrapping
// ErrParse.
type PDFParser interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// PageFetcher downloads an HTML page and returns its paragraph text.
//
// Implementations MUST reject non-http(s) URLs and SHOULD refuse private
// addresses. Errors wrap one of the sentinels below so callers can tell a
// rejected URL from an upstream failure.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Sentinel errors for extraction.
var (
	// ErrUnsupportedSource indicates a Source variant the extractor does not handle.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrDecode indicates the PDF data URI has no payload or the payload is not base64.
	ErrDecode = errors.New("invalid PDF encoding")

	// ErrParse indicates the PDF or HTML document could not be parsed.
	ErrParse = errors.New("document could not be parsed")

	// ErrInvalidURL indicates the URL format is invalid or uses an unsupported scheme.
	// Only http:// and https:// schemes are supported.
	//
	// Example:
	//   - "not-a-url" → ErrInvalidURL
	//   - "file:///etc/passwd" → ErrInvalidURL
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a loopback, private or
	// link-local address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrFetch indicates the page could not be retrieved: network failure or
	// a non-2xx response.
	ErrFetch = errors.New("page fetch failed")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the fetch exceeded its own timeout.
	ErrTimeout = errors.New("request timeout")
)

// IsRejectedURL reports whether err means the URL itself was refused before
// any request was made (bad scheme, malformed, private address).
func IsRejectedURL(err error) bool {
	return errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrPrivateIP)
}
