// httpcontroller/routes.go
package httpcontroller

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amsot/twfcode/internal/wordpress"
)

// Embed the assets and views directories.
//
//go:embed assets
var assetsFS embed.FS

//go:embed views
var viewsFS embed.FS

// reservedSlugs are path segments that never name content.
var reservedSlugs = map[string]bool{
	"codes":    true,
	"category": true,
	"dynamic":  true,
}

// initRoutes initializes the routes for the server.
func (s *Server) initRoutes() error {
	e := s.Echo

	e.GET("/", s.homeHandler)
	e.GET("/codes", s.archiveHandler)
	e.GET("/codes/:slug", s.articleHandler)
	e.GET("/codes/:slug/images/:index", s.imageHandler)
	e.GET("/codes/:slug/blocks/:index/raw", s.rawBlockHandler)

	e.GET("/categories", s.termsHandler(wordpress.TaxonomyCategories))
	e.GET("/tags", s.termsHandler(wordpress.TaxonomyTags))
	e.GET("/category/:slug", s.termHandler(wordpress.TaxonomyCategories))
	e.GET("/tag/:slug", s.termHandler(wordpress.TaxonomyTags))
	e.GET("/author/:id", s.authorHandler)

	e.GET("/search", s.searchHandler)
	e.GET("/api/search", s.apiSearchHandler)
	e.POST("/theme", s.themeHandler)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if s.Metrics != nil && s.Settings.Metrics.Enabled {
		e.GET(s.Settings.Metrics.Path, echo.WrapHandler(s.Metrics.Handler()))
	}

	// Set up static file serving for assets.
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return fmt.Errorf("failed to open embedded assets: %w", err)
	}
	e.GET("/assets/css/highlight.css", s.highlightCSSHandler)
	customFileServer(e, assets, "assets")

	return nil
}
