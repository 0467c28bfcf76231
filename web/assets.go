// Package web embeds the static pages served by the summarizer.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed static/*
var staticFiles embed.FS

// Assets returns the static files. A non-empty dir serves files from disk
// instead, which lets the pages be edited without rebuilding.
func Assets(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
