package entity

import "time"

// SummaryResult is the outcome of a successful summarization.
// Only Summary is returned to HTTP callers; the remaining fields feed logs,
// metrics and the CLI's JSON output.
type SummaryResult struct {
	Summary    string        `json:"summary"`
	Source     SourceKind    `json:"source"`
	InputChars int           `json:"input_chars"`
	Duration   time.Duration `json:"duration_ns"`
}
