// Package metrics provides Prometheus metrics for the summarization pipeline.
//
// This package centralizes the business metrics of the service:
//   - Content extraction per source kind (count, duration, size)
//   - End-to-end summarization outcomes
//   - Input window truncations
//   - Summary cache lookups
//
// HTTP RED metrics live next to the middleware in internal/handler/http, and
// per-backend generation metrics live in internal/infra/summarizer. All
// metrics register with the Prometheus default registry and are exposed via
// the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	text, err := extractor.Extract(ctx, src)
//	metrics.RecordExtraction("pdf", err == nil, time.Since(start), len(text))
package metrics
