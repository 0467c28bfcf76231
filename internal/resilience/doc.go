// Package resilience groups the failure-handling helpers used around the
// outbound calls of the summarizer: page fetches and model backends.
//
// circuitbreaker wraps sony/gobreaker so a failing dependency is skipped
// until it recovers. retry re-runs transient failures with exponential
// backoff and honours Retry-After hints.
//
//	cb := circuitbreaker.New(circuitbreaker.DefaultConfig("huggingface"))
//	out, err := cb.Execute(func() (any, error) {
//	    var text string
//	    err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	        var err error
//	        text, err = call(ctx)
//	        return err
//	    })
//	    return text, err
//	})
package resilience
