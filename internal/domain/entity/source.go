// Package entity defines the core values that flow through the summarizer:
// the input source a caller submits and the result returned to them.
package entity

import "fmt"

// SourceKind names the variant of a Source.
type SourceKind string

const (
	SourceText SourceKind = "text"
	SourcePDF  SourceKind = "pdf"
	SourceURL  SourceKind = "url"
)

// String implements fmt.Stringer.
func (k SourceKind) String() string {
	return string(k)
}

// Source is the input of a summarization request. It is a closed set:
// only TextSource, PDFSource and URLSource implement it, and consumers
// switch over those three types.
type Source interface {
	Kind() SourceKind
	isSource()
}

// TextSource carries raw text supplied by the caller.
type TextSource struct {
	Text string
}

// PDFSource carries a PDF document encoded as a data URI
// ("data:application/pdf;base64,<payload>").
type PDFSource struct {
	DataURI string
}

// URLSource points at an HTML page whose paragraphs are summarized.
type URLSource struct {
	URL string
}

func (TextSource) Kind() SourceKind { return SourceText }
func (PDFSource) Kind() SourceKind  { return SourcePDF }
func (URLSource) Kind() SourceKind  { return SourceURL }

func (TextSource) isSource() {}
func (PDFSource) isSource()  {}
func (URLSource) isSource()  {}

// Describe returns a short, log-safe description of the source.
// Payloads are never included, only their size or the target URL.
func Describe(src Source) string {
	switch s := src.(type) {
	case TextSource:
		return fmt.Sprintf("text(%d bytes)", len(s.Text))
	case PDFSource:
		return fmt.Sprintf("pdf(%d bytes encoded)", len(s.DataURI))
	case URLSource:
		return fmt.Sprintf("url(%s)", s.URL)
	default:
		return fmt.Sprintf("unknown(%T)", src)
	}
}
