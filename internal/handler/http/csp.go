package http

import (
	"net/http"
	"slices"
	"strings"
)

// directiveOrder fixes the header layout so the same policy always renders
// to the same string.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"object-src",
	"base-uri",
	"form-action",
	"frame-ancestors",
}

// Policy is a Content-Security-Policy under construction.
// It is not safe for concurrent mutation; build it once at startup.
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

// NewPolicy returns an empty policy.
func NewPolicy() *Policy {
	return &Policy{directives: make(map[string][]string)}
}

// PagePolicy allows the pages to load their own script and stylesheet and
// to call the API on the same origin. Nothing else is permitted.
func PagePolicy() *Policy {
	return NewPolicy().
		Directive("default-src", "'self'").
		Directive("script-src", "'self'").
		Directive("style-src", "'self'").
		Directive("img-src", "'self'", "data:").
		Directive("connect-src", "'self'").
		Directive("object-src", "'none'").
		Directive("base-uri", "'self'").
		Directive("form-action", "'self'").
		Directive("frame-ancestors", "'none'")
}

// Directive sets name to sources, replacing any earlier value.
// A directive with no sources is dropped from the header.
func (p *Policy) Directive(name string, sources ...string) *Policy {
	if len(sources) == 0 {
		delete(p.directives, name)
		return p
	}
	p.directives[name] = sources
	return p
}

// ReportOnly switches the header to Content-Security-Policy-Report-Only.
func (p *Policy) ReportOnly(enabled bool) *Policy {
	p.reportOnly = enabled
	return p
}

// HeaderName returns the header the policy is sent under.
func (p *Policy) HeaderName() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// String renders the policy. Known directives come first in a fixed order,
// anything else follows sorted by name.
func (p *Policy) String() string {
	parts := make([]string, 0, len(p.directives))
	seen := make(map[string]bool, len(directiveOrder))
	for _, name := range directiveOrder {
		seen[name] = true
		if sources, ok := p.directives[name]; ok {
			parts = append(parts, name+" "+strings.Join(sources, " "))
		}
	}

	var extra []string
	for name := range p.directives {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		parts = append(parts, name+" "+strings.Join(p.directives[name], " "))
	}
	return strings.Join(parts, "; ")
}

// SecurityHeaders sets the policy and the usual companion headers on every
// response. A nil or empty policy only sets the companion headers.
func SecurityHeaders(policy *Policy) Middleware {
	var name, value string
	if policy != nil {
		name, value = policy.HeaderName(), policy.String()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if value != "" {
				h.Set(name, value)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
