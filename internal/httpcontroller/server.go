// internal/httpcontroller/server.go
package httpcontroller

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/acme/autocert"

	"github.com/amsot/twfcode/internal/blocks"
	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/observability"
	"github.com/amsot/twfcode/internal/wordpress"
)

const componentName = "http"

// highlightStyle is the chroma style served as /assets/css/highlight.css.
const highlightStyle = "monokai"

// Content is the read side of the CMS used by the page handlers.
type Content interface {
	ListSnippets(ctx context.Context, q wordpress.Query) ([]wordpress.Snippet, error)
	SnippetBySlug(ctx context.Context, slug string) (*wordpress.Snippet, error)
	RelatedSnippets(ctx context.Context, s *wordpress.Snippet, limit int) ([]wordpress.Snippet, error)
	Search(ctx context.Context, term string, limit int) ([]wordpress.Snippet, error)
	Terms(ctx context.Context, tax wordpress.Taxonomy) ([]wordpress.Term, error)
	TermBySlug(ctx context.Context, tax wordpress.Taxonomy, slug string) (*wordpress.Term, error)
	UserByID(ctx context.Context, id int) (*wordpress.Author, error)
	SnippetsByTerm(ctx context.Context, tax wordpress.Taxonomy, term *wordpress.Term) ([]wordpress.Snippet, error)
	SnippetsByAuthor(ctx context.Context, id int) ([]wordpress.Snippet, error)
}

// Server encapsulates Echo server and related configurations.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Content  Content
	Blocks   *blocks.Renderer
	Metrics  *observability.Metrics // nil disables request metrics and /metrics

	templates    *template.Template
	highlightCSS []byte
	assetVersion string
	logger       logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the module logger used for request and error logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables request metrics and the exposition endpoint.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.Metrics = m }
}

// WithAssetVersion sets the value mixed into static asset ETags, normally the build version.
func WithAssetVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.assetVersion = v
		}
	}
}

// New initializes a new HTTP server serving content through renderer.
func New(settings *conf.Settings, content Content, renderer *blocks.Renderer, opts ...Option) (*Server, error) {
	if settings == nil || content == nil || renderer == nil {
		return nil, fmt.Errorf("httpcontroller: settings, content and renderer are required")
	}

	s := &Server{
		Echo:         echo.New(),
		Settings:     settings,
		Content:      content,
		Blocks:       renderer,
		assetVersion: time.Now().UTC().Format(time.RFC3339),
		logger:       logger.Global().Module(componentName),
	}
	for _, opt := range opts {
		opt(s)
	}

	var css bytes.Buffer
	if err := blocks.WriteHighlightCSS(&css, highlightStyle); err != nil {
		return nil, fmt.Errorf("failed to generate highlight stylesheet: %w", err)
	}
	s.highlightCSS = css.Bytes()

	if err := s.initializeServer(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeServer configures and initializes the server.
func (s *Server) initializeServer() error {
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Logger = logger.NewEchoLogger(s.logger.Module("echo"))
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()
	s.Echo.HTTPErrorHandler = s.customHTTPErrorHandler

	s.Echo.Server.ReadTimeout = s.Settings.WebServer.ReadTimeout
	s.Echo.Server.WriteTimeout = s.Settings.WebServer.WriteTimeout
	s.Echo.TLSServer.ReadTimeout = s.Settings.WebServer.ReadTimeout
	s.Echo.TLSServer.WriteTimeout = s.Settings.WebServer.WriteTimeout

	if err := s.setupTemplateRenderer(); err != nil {
		return err
	}
	s.configureMiddleware()
	return s.initRoutes()
}

// Start begins listening and serving HTTP requests. Listener failures other
// than a regular shutdown are delivered on the returned channel.
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)
	address := ":" + s.Settings.WebServer.Port

	go func() {
		var err error

		if s.Settings.WebServer.AutoTLS {
			configPaths, configErr := conf.GetDefaultConfigPaths()
			if configErr != nil {
				errChan <- fmt.Errorf("failed to get config paths: %w", configErr)
				return
			}

			s.Echo.AutoTLSManager.Prompt = autocert.AcceptTOS
			s.Echo.AutoTLSManager.Cache = autocert.DirCache(configPaths[0])
			s.Echo.AutoTLSManager.HostPolicy = autocert.HostWhitelist(s.Settings.WebServer.Host)

			err = s.Echo.StartAutoTLS(address)
		} else {
			err = s.Echo.Start(address)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	s.logger.Info("HTTP server started",
		logger.String("address", address),
		logger.Bool("autotls", s.Settings.WebServer.AutoTLS))
	return errChan
}

// Shutdown gracefully stops the server, waiting for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.Echo.Shutdown(ctx)
}

// requestLogger returns the module logger bound to the request trace id.
func (s *Server) requestLogger(c echo.Context) logger.Logger {
	return s.logger.WithContext(c.Request().Context())
}
