// Package pdf extracts plain text from PDF documents using github.com/ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"content-summarizer/internal/usecase/extract"

	"github.com/ledongthuc/pdf"
)

// Parser implements extract.PDFParser. It is stateless and safe for concurrent use.
type Parser struct {
	// MaxPages stops extraction after this many pages; 0 means no limit.
	MaxPages int
}

// NewParser creates a PDF parser.
func NewParser(maxPages int) *Parser {
	return &Parser{MaxPages: maxPages}
}

var pdfHeader = []byte("%PDF-")

// ExtractText returns the text of every page in page order joined with "\n".
// Pages without content contribute an empty line. Data that is not a
// readable PDF yields an error wrapping extract.ErrParse.
func (p *Parser) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// The underlying reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed PDF: %v", extract.ErrParse, r)
		}
	}()

	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n\x00"), pdfHeader) {
		return "", fmt.Errorf("%w: missing %%PDF header", extract.ErrParse)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", extract.ErrParse, err)
	}

	total := reader.NumPage()
	limit := total
	if p.MaxPages > 0 && limit > p.MaxPages {
		limit = p.MaxPages
		slog.DebugContext(ctx, "pdf page limit reached",
			slog.Int("pages", total),
			slog.Int("max_pages", p.MaxPages))
	}

	pages := make([]string, 0, limit)
	for i := 1; i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", extract.ErrParse, i, err)
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}
