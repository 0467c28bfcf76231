// Command summarize summarizes text, a PDF file or a web page from the
// command line using the same pipeline as the API server.
//
// Usage:
//
//	summarize text "some long text"     # or pipe text on stdin
//	summarize pdf report.pdf
//	summarize url https://example.com/article --output json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
