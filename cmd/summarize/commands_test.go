package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SUMMARIZER_PROVIDER", "noop")
	t.Setenv("SUMMARIZER_MAX_LENGTH", "4")
	t.Setenv("SUMMARIZER_MIN_LENGTH", "1")
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestTextCommand_Argument(t *testing.T) {
	out, err := execute(t, "", "text", "one two three four five six")

	require.NoError(t, err)
	assert.Equal(t, "one two three four\n", out)
}

func TestTextCommand_Stdin(t *testing.T) {
	out, err := execute(t, "alpha beta\ngamma", "text")

	require.NoError(t, err)
	assert.Equal(t, "alpha beta gamma\n", out)
}

func TestTextCommand_JSONOutput(t *testing.T) {
	out, err := execute(t, "", "text", "hello world", "--output", "json")
	require.NoError(t, err)

	var got struct {
		Summary    string `json:"summary"`
		Source     string `json:"source"`
		InputChars int    `json:"input_chars"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "hello world", got.Summary)
	assert.Equal(t, "text", got.Source)
	assert.Equal(t, 11, got.InputChars)
}

func TestCommands_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	notPDF := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("plain text"), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad output format", args: []string{"text", "x", "--output", "xml"}, wantErr: "invalid --output"},
		{name: "pdf missing file", args: []string{"pdf", missing}, wantErr: "failed to read"},
		{name: "pdf not a pdf", args: []string{"pdf", notPDF}, wantErr: "parse"},
		{name: "url bad scheme", args: []string{"url", "ftp://example.com/file"}, wantErr: "invalid URL"},
		{name: "url needs argument", args: []string{"url"}, wantErr: "accepts 1 arg"},
		{name: "text too many args", args: []string{"text", "a", "b"}, wantErr: "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
