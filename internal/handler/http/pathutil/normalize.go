// Package pathutil maps request paths onto a fixed set of metric and span labels.
package pathutil

import "strings"

// Other is the label used for every path the service does not route.
const Other = "/other"

// knownRoutes lists every path the server registers.
var knownRoutes = map[string]struct{}{
	"/":               {},
	"/summarize":      {},
	"/summarize_text": {},
	"/styles.css":     {},
	"/script.js":      {},
	"/health":         {},
	"/live":           {},
	"/ready":          {},
	"/metrics":        {},
}

// NormalizePath returns path when it is a registered route and Other otherwise,
// so scanners probing random URLs cannot explode label cardinality.
// Query strings and a trailing slash (except on "/") are ignored.
//
// Examples:
//
//	NormalizePath("/summarize_text")     // "/summarize_text"
//	NormalizePath("/health?verbose=1")   // "/health"
//	NormalizePath("/summarize/")         // "/summarize"
//	NormalizePath("/wp-login.php")       // "/other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return Other
}

// ExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func ExpectedCardinality() int {
	return len(knownRoutes) + 1
}
