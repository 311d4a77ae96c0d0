package httpcontroller

import (
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// customFileServer sets up a file server for serving static assets with correct MIME types.
func customFileServer(e *echo.Echo, fileSystem fs.FS, root string) {
	fileServer := http.FileServer(http.FS(fileSystem))

	e.GET("/"+root+"/*", echo.WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Correctly set the URL path for the file server
		r.URL.Path = strings.TrimPrefix(r.URL.Path, "/"+root)

		// Directory listings are not served
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		mimeType := mime.TypeByExtension(filepath.Ext(r.URL.Path))
		if mimeType == "" {
			mimeType = "text/plain; charset=utf-8"
		}
		w.Header().Set("Content-Type", mimeType)
		w.Header().Set("X-Content-Type-Options", "nosniff")

		fileServer.ServeHTTP(w, r)
	})))
}

// highlightCSSHandler serves the generated syntax highlighting stylesheet.
func (s *Server) highlightCSSHandler(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", s.highlightCSS)
}
