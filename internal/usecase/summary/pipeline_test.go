package summary_test

import (
	"context"
	"errors"
	"testing"

	"content-summarizer/internal/domain/entity"
	"content-summarizer/internal/usecase/extract"
	"content-summarizer/internal/usecase/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(_ context.Context, src entity.Source) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.text != "" {
		return s.text, nil
	}
	if t, ok := src.(entity.TextSource); ok {
		return t.Text, nil
	}
	return "", nil
}

func TestPipeline_IdentityStagesEchoText(t *testing.T) {
	p := summary.NewPipeline(stubExtractor{}, summary.NewService(&echoModel{}), nil)

	res, err := p.Run(context.Background(), entity.TextSource{Text: "Hello there, general."})

	require.NoError(t, err)
	assert.Equal(t, "Hello there, general.", res.Summary)
	assert.Equal(t, entity.SourceText, res.Source)
	assert.Equal(t, len("Hello there, general."), res.InputChars)
}

func TestPipeline_RealExtractorForText(t *testing.T) {
	p := summary.NewPipeline(extract.NewService(nil, nil), summary.NewService(&echoModel{}), nil)

	res, err := p.Run(context.Background(), entity.TextSource{Text: "identity"})

	require.NoError(t, err)
	assert.Equal(t, "identity", res.Summary)
}

func TestPipeline_EmptyExtractionGivesEmptySummary(t *testing.T) {
	model := &echoModel{}
	p := summary.NewPipeline(stubExtractor{}, summary.NewService(model), nil)

	res, err := p.Run(context.Background(), entity.URLSource{URL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, "", res.Summary)
	assert.Equal(t, 0, model.callCount())
}

func TestPipeline_ExtractErrorStopsBeforeModel(t *testing.T) {
	model := &echoModel{}
	p := summary.NewPipeline(stubExtractor{err: extract.ErrDecode}, summary.NewService(model), nil)

	_, err := p.Run(context.Background(), entity.PDFSource{DataURI: "bad"})

	assert.ErrorIs(t, err, extract.ErrDecode)
	assert.Equal(t, 0, model.callCount())
}

func TestPipeline_ModelErrorPropagates(t *testing.T) {
	p := summary.NewPipeline(stubExtractor{}, summary.NewService(&echoModel{err: errors.New("boom")}), nil)

	_, err := p.Run(context.Background(), entity.TextSource{Text: "text"})

	assert.ErrorIs(t, err, summary.ErrModel)
}

func TestPipeline_NilSourceIsInvalidInput(t *testing.T) {
	p := summary.NewPipeline(stubExtractor{}, summary.NewService(&echoModel{}), nil)

	_, err := p.Run(context.Background(), nil)

	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}
