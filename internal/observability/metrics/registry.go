// Package metrics provides centralized Prometheus metrics for the summarization pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction metrics track how each source kind turns into plain text
var (
	// ExtractionsTotal counts extraction attempts by source kind and result
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_extractions_total",
			Help: "Total number of content extractions",
		},
		[]string{"kind", "result"}, // result: success, failure
	)

	// ExtractionDuration measures extraction latency by source kind
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_extraction_duration_seconds",
			Help:    "Time taken to extract text from a source",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
		[]string{"kind"},
	)

	// ExtractedCharacters measures the size of the extracted text
	ExtractedCharacters = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_extracted_characters",
			Help:    "Number of characters extracted from a source",
			Buckets: prometheus.ExponentialBuckets(100, 4, 9), // 100 .. ~6.5M
		},
		[]string{"kind"},
	)
)

// Request metrics track end-to-end summarization outcomes
var (
	// SummaryRequestsTotal counts pipeline runs by source kind and outcome
	SummaryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_requests_total",
			Help: "Total number of summarization requests by outcome",
		},
		[]string{"kind", "outcome"},
	)

	// SummaryPipelineDuration measures extract+summarize latency
	SummaryPipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_pipeline_duration_seconds",
			Help:    "Time taken to extract and summarize a source",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"kind"},
	)

	// InputTruncationsTotal counts inputs cut down to the model's input window
	InputTruncationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_input_truncations_total",
			Help: "Total number of inputs truncated to the model input window",
		},
	)
)

// Cache metrics track the optional summary cache
var (
	// SummaryCacheLookupsTotal counts cache lookups by result
	SummaryCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_lookups_total",
			Help: "Total number of summary cache lookups",
		},
		[]string{"result"}, // result: hit, miss, error
	)
)

// RecordExtraction records one extraction attempt.
func RecordExtraction(kind string, success bool, duration time.Duration, chars int) {
	result := "success"
	if !success {
		result = "failure"
	}
	ExtractionsTotal.WithLabelValues(kind, result).Inc()
	ExtractionDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if success {
		ExtractedCharacters.WithLabelValues(kind).Observe(float64(chars))
	}
}

// RecordSummaryRequest records the outcome of one pipeline run.
// Outcome is "success" or a short error class such as "extract_error".
func RecordSummaryRequest(kind, outcome string, duration time.Duration) {
	SummaryRequestsTotal.WithLabelValues(kind, outcome).Inc()
	SummaryPipelineDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordInputTruncated records that an input exceeded the model input window.
func RecordInputTruncated() {
	InputTruncationsTotal.Inc()
}

// RecordCacheLookup records a summary cache lookup. Result is "hit", "miss" or "error".
func RecordCacheLookup(result string) {
	SummaryCacheLookupsTotal.WithLabelValues(result).Inc()
}
