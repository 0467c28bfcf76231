package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder records per-backend summary metrics.
// Tests inject a fake in place of the Prometheus implementation.
type SummaryMetricsRecorder interface {
	// RecordLength records the length of a generated summary in tokens.
	RecordLength(provider string, tokens int)

	// RecordLimitExceeded counts raw model outputs longer than MaxLength.
	RecordLimitExceeded(provider string)

	// RecordCompliance records whether the latest output was within MaxLength.
	RecordCompliance(provider string, withinLimit bool)

	// RecordDuration records the time taken by one backend call.
	RecordDuration(provider string, duration time.Duration)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder using Prometheus metrics.
type PrometheusSummaryMetrics struct {
	lengthHistogram   *prometheus.HistogramVec
	exceededCounter   *prometheus.CounterVec
	complianceGauge   *prometheus.GaugeVec
	durationHistogram *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogramVec gets an existing histogram vector or creates a new one if it doesn't exist
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// getOrCreateCounterVec gets an existing counter vector or creates a new one if it doesn't exist
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// getOrCreateGaugeVec gets an existing gauge vector or creates a new one if it doesn't exist
func getOrCreateGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(opts, labels)
	if err := prometheus.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec)
		}
		return promauto.NewGaugeVec(opts, labels)
	}
	return g
}

// NewPrometheusSummaryMetrics returns the process-wide recorder.
// It is a singleton so repeated construction in tests does not re-register collectors.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		labels := []string{"provider"}
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			lengthHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "summarizer_output_length_tokens",
				Help:    "Distribution of raw model output lengths in whitespace tokens",
				Buckets: []float64{10, 20, 40, 60, 80, 100, 120, 150, 200, 300},
			}, labels),
			exceededCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "summarizer_output_limit_exceeded_total",
				Help: "Total number of model outputs longer than the configured max length",
			}, labels),
			complianceGauge: getOrCreateGaugeVec(prometheus.GaugeOpts{
				Name: "summarizer_output_limit_compliance",
				Help: "1 if the latest model output was within the max length, 0 otherwise",
			}, labels),
			durationHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "summarizer_backend_duration_seconds",
				Help:    "Time taken by a single summarization backend call",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, labels),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength implements SummaryMetricsRecorder.RecordLength
func (p *PrometheusSummaryMetrics) RecordLength(provider string, tokens int) {
	p.lengthHistogram.WithLabelValues(provider).Observe(float64(tokens))
}

// RecordLimitExceeded implements SummaryMetricsRecorder.RecordLimitExceeded
func (p *PrometheusSummaryMetrics) RecordLimitExceeded(provider string) {
	p.exceededCounter.WithLabelValues(provider).Inc()
}

// RecordCompliance implements SummaryMetricsRecorder.RecordCompliance
func (p *PrometheusSummaryMetrics) RecordCompliance(provider string, withinLimit bool) {
	if withinLimit {
		p.complianceGauge.WithLabelValues(provider).Set(1.0)
	} else {
		p.complianceGauge.WithLabelValues(provider).Set(0.0)
	}
}

// RecordDuration implements SummaryMetricsRecorder.RecordDuration
func (p *PrometheusSummaryMetrics) RecordDuration(provider string, duration time.Duration) {
	p.durationHistogram.WithLabelValues(provider).Observe(duration.Seconds())
}
