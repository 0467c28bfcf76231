// Package summarize provides the HTTP handler for POST /summarize_text.
package summarize

import (
	"bytes"
	"encoding/json"

	"content-summarizer/internal/domain/entity"
)

// Request is the JSON body of POST /summarize_text.
//
// Each key is held raw so that presence can be decided per key: a missing key
// and a key set to null are both absent. When several keys are present the
// first of text, pdfContent, url wins.
type Request struct {
	Text       json.RawMessage `json:"text"`
	PDFContent json.RawMessage `json:"pdfContent"`
	URL        json.RawMessage `json:"url"`
}

// Response is the JSON body of a successful summarization.
type Response struct {
	Summary string `json:"summary"`
}

// Source converts the request into a domain source.
// It returns entity.ErrInvalidInput when no key is present and an
// *entity.ValidationError when the winning key is not a JSON string.
func (r Request) Source() (entity.Source, error) {
	switch {
	case present(r.Text):
		s, err := stringField("text", r.Text)
		if err != nil {
			return nil, err
		}
		return entity.TextSource{Text: s}, nil

	case present(r.PDFContent):
		s, err := stringField("pdfContent", r.PDFContent)
		if err != nil {
			return nil, err
		}
		return entity.PDFSource{DataURI: s}, nil

	case present(r.URL):
		s, err := stringField("url", r.URL)
		if err != nil {
			return nil, err
		}
		return entity.URLSource{URL: s}, nil

	default:
		return nil, entity.ErrInvalidInput
	}
}

var jsonNull = []byte("null")

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

func stringField(field string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &entity.ValidationError{Field: field, Message: "must be a string"}
	}
	return s, nil
}
