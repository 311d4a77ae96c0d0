package httpcontroller

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/observability/metrics"
)

// layoutTemplate wraps every page.
const layoutTemplate = "layout"

// PageData represents data for rendering a page.
type PageData struct {
	C        echo.Context   // The Echo context for the current request
	Page     string         // Name of the content template rendered inside the layout
	Title    string         // Document title, suffix included
	Settings *conf.Settings // Application settings
	Theme    string         // Active color theme
	Query    string         // Current search term, echoed in the header widget
	Data     any            // Page specific view model
}

// TemplateRenderer is a custom HTML template renderer for Echo framework.
type TemplateRenderer struct {
	templates *template.Template
	logger    logger.Logger
	metrics   *metrics.HTTPMetrics
}

// Render renders a template with the given data.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	start := time.Now()
	page := name
	if d, ok := data.(PageData); ok {
		page = d.Page
	}

	// Render into a buffer so a failing template never sends a partial page
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		t.logger.Error("template execution failed",
			logger.String("template", name),
			logger.String("page", page),
			logger.Error(err))
		if t.metrics != nil {
			t.metrics.RecordTemplateRenderError(page)
		}
		return err
	}
	if t.metrics != nil {
		t.metrics.RecordTemplateRender(page, time.Since(start).Seconds())
	}

	_, err := buf.WriteTo(w)
	return err
}

// setupTemplateRenderer configures the template renderer for the server
func (s *Server) setupTemplateRenderer() error {
	tmpl, err := template.New("").Funcs(s.GetTemplateFunctions()).ParseFS(viewsFS, "views/*.html", "views/*/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse views: %w", err)
	}
	s.templates = tmpl

	renderer := &TemplateRenderer{templates: tmpl, logger: s.logger}
	if s.Metrics != nil {
		renderer.metrics = s.Metrics.HTTP
	}
	s.Echo.Renderer = renderer
	return nil
}

// RenderContent renders the content template named by data.Page
func (s *Server) RenderContent(data PageData) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, data.Page, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", data.Page, err)
	}
	//nolint:gosec // output of html/template
	return template.HTML(buf.String()), nil
}

// renderPage renders page inside the layout. An empty title uses the site name alone.
func (s *Server) renderPage(c echo.Context, status int, page, title string, data any) error {
	return c.Render(status, layoutTemplate, PageData{
		C:        c,
		Page:     page,
		Title:    s.documentTitle(title),
		Settings: s.Settings,
		Theme:    currentTheme(c),
		Query:    c.QueryParam("q"),
		Data:     data,
	})
}

// documentTitle appends the site suffix to a plain page title.
func (s *Server) documentTitle(title string) string {
	site := s.Settings.Site
	if title == "" {
		return site.Name
	}
	suffix := site.TitleSuffix
	if suffix == "" && site.Name != "" {
		suffix = " | " + site.Name
	}
	return title + suffix
}
