// Package web embeds the dashboard frontend (dist/) and serves it as a
// single-page application.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
)

//go:embed all:dist
var distFS embed.FS

// SPAHandler serves static files from dist/ and falls back to index.html
// for any path that is not a file, so client-side tabs survive a reload.
// Unknown /api/ paths get a JSON 404 instead of the page.
func SPAHandler(logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	subFS, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		if f, err := subFS.Open(name); err == nil {
			if closeErr := f.Close(); closeErr != nil {
				logger.Debug("web: failed to close embedded file", zap.String("path", name), zap.Error(closeErr))
			}
			fileServer.ServeHTTP(w, r)
			return
		}

		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
