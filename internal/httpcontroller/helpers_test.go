package httpcontroller

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/wordpress"
)

func TestGetStatusCodeFromError(t *testing.T) {
	t.Parallel()

	categorized := func(c errors.ErrorCategory) error {
		return errors.Newf("failure").Component("test").Category(c).Build()
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errors.NotFound("test", "snippet", "x"), http.StatusNotFound},
		{"validation", categorized(errors.CategoryValidation), http.StatusBadRequest},
		{"network", categorized(errors.CategoryNetwork), http.StatusServiceUnavailable},
		{"http", categorized(errors.CategoryHTTP), http.StatusServiceUnavailable},
		{"limit", categorized(errors.CategoryLimit), http.StatusServiceUnavailable},
		{"bad payload", categorized(errors.CategoryFileParsing), http.StatusServiceUnavailable},
		{"render", categorized(errors.CategoryRender), http.StatusInternalServerError},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("page: %w", errors.NotFound("test", "term", "x")), http.StatusNotFound},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, getStatusCodeFromError(tt.err))
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		want   string
	}{
		{"", "/"},
		{"/codes/x", "/codes/x"},
		{"http://example.com/tags", "/tags"},
		{"http://EXAMPLE.com/tags?a=1", "/tags?a=1"},
		{"https://other.test/tags", "/"},
		{"//other.test/x", "/"},
		{"/\\other.test", "/"},
		{"javascript:alert(1)", "/"},
		{"relative/path", "/"},
		{"%zz", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirect(tt.target, "example.com"), tt.target)
	}
}

func TestTemplateHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", formatDate(wordpress.Date{}))
	assert.Equal(t, "09.11.2023", formatDate(wordpress.Date{Time: time.Date(2023, 11, 9, 8, 0, 0, 0, time.UTC)}))

	assert.Equal(t, "https://twitter.com/intent/tweet?text=Hola+%26+adi%C3%B3s&url=https%3A%2F%2Fx.test%2Fcodes%2Fa",
		twitterShareURL("Hola & adiós", "https://x.test/codes/a"))
	assert.Equal(t, "https://www.linkedin.com/sharing/share-offsite/?url=https%3A%2F%2Fx.test%2Fcodes%2Fa",
		linkedinShareURL("https://x.test/codes/a"))

	assert.Equal(t, "/category/php", termPath(wordpress.TaxonomyCategories, "php"))
	assert.Equal(t, "/tag/go", termPath(wordpress.TaxonomyTags, "go"))

	assert.Equal(t, "Código & más", plainText("<b>Código</b> &amp; más"))
}

func TestTemplateFunctions_Upper(t *testing.T) {
	t.Parallel()

	s := &Server{Settings: &conf.Settings{}}
	upper, ok := s.GetTemplateFunctions()["upper"].(func(string) string)
	assert.True(t, ok)
	assert.Equal(t, "BÁSICO", upper("Básico"))
}

func TestDocumentTitle(t *testing.T) {
	t.Parallel()

	s := &Server{Settings: &conf.Settings{Site: conf.SiteSettings{Name: "TWF.code"}}}
	assert.Equal(t, "TWF.code", s.documentTitle(""))
	assert.Equal(t, "Go | TWF.code", s.documentTitle("Go"))

	s.Settings.Site.TitleSuffix = " · TWF"
	assert.Equal(t, "Go · TWF", s.documentTitle("Go"))
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	s := &Server{Settings: &conf.Settings{Site: conf.SiteSettings{BaseURL: "https://code.amsot.net/"}}}
	assert.Equal(t, "https://code.amsot.net/codes/a", s.absoluteURL("/codes/a"))
}

func TestDegradeIgnoresCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := errors.New(ctx.Err()).Category(errors.CategoryCancellation).Build()

	log := &countingLogger{}
	degrade(log, "latest", err)
	degrade(log, "latest", nil)
	assert.Zero(t, log.warnings)

	degrade(log, "latest", fmt.Errorf("boom"))
	assert.Equal(t, 1, log.warnings)
}

// countingLogger counts warnings; other methods are never called by degrade.
type countingLogger struct {
	logger.Logger
	warnings int
}

func (l *countingLogger) Warn(string, ...logger.Field) { l.warnings++ }
