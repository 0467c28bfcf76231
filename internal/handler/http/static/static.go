// Package static serves the about page, the summarize form and their assets.
package static

import (
	"fmt"
	"io/fs"
	"net/http"
)

// Page maps a route onto a file in the asset filesystem.
type Page struct {
	Pattern string
	File    string
}

// Pages lists every static route. "/{$}" matches only the root path, so
// unknown paths fall through to the mux's 404.
var Pages = []Page{
	{Pattern: "GET /{$}", File: "about.html"},
	{Pattern: "GET /summarize", File: "summarize.html"},
	{Pattern: "GET /styles.css", File: "styles.css"},
	{Pattern: "GET /script.js", File: "script.js"},
}

// FileHandler serves one file verbatim.
type FileHandler struct {
	FS   fs.FS
	Name string
}

// ServeHTTP writes the file with a Content-Type derived from its extension.
func (h FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFileFS(w, r, h.FS, h.Name)
}

// Register mounts every page on mux. It fails if a file is missing from
// assets so a broken build is caught at startup rather than on first request.
func Register(mux *http.ServeMux, assets fs.FS) error {
	for _, p := range Pages {
		if _, err := fs.Stat(assets, p.File); err != nil {
			return fmt.Errorf("static asset %s: %w", p.File, err)
		}
		mux.Handle(p.Pattern, FileHandler{FS: assets, Name: p.File})
	}
	return nil
}
