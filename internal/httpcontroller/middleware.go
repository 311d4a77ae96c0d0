package httpcontroller

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"

	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 64
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(s.RequestIDMiddleware())
	s.Echo.Use(s.LoggingMiddleware())
	s.Echo.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
		LogLevel:  gommonlog.ERROR,
	}))
	s.Echo.Use(s.GzipMiddleware())
	s.Echo.Use(s.CacheControlMiddleware())
}

// RequestIDMiddleware tags each request with a short id, reusing a sane
// incoming X-Request-ID. The id becomes the logger trace id for the request.
func (s *Server) RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(requestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLen || strings.ContainsAny(requestID, " \t\r\n") {
				requestID = uuid.New().String()[:8]
			}

			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), requestID)))
			c.Set(requestIDKey, requestID)
			c.Response().Header().Set(requestIDHeader, requestID)
			return next(c)
		}
	}
}

// LoggingMiddleware logs completed requests and records request metrics.
// Handler errors are resolved here so the logged status is the one sent.
func (s *Server) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			latency := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			if s.Metrics != nil {
				s.Metrics.HTTP.RecordHTTPRequest(req.Method, route, res.Status, latency.Seconds())
				s.Metrics.HTTP.RecordHTTPResponseSize(req.Method, route, res.Size)
			}

			if s.isQuietPath(req.URL.Path) {
				return nil
			}

			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.String("route", route),
				logger.Int("status", res.Status),
				logger.String("ip", c.RealIP()),
				logger.Duration("latency", latency),
				logger.Int64("bytes_out", res.Size),
			}

			log := s.requestLogger(c)
			switch {
			case errors.IsCategory(err, errors.CategoryCancellation):
				log.Debug("HTTP request cancelled", fields...)
			case res.Status >= 500:
				log.Error("HTTP request", fields...)
			case res.Status >= 400:
				log.Warn("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
			return nil
		}
	}
}

// isQuietPath reports paths polled by infrastructure, which are not logged.
func (s *Server) isQuietPath(path string) bool {
	return path == "/healthz" || path == s.Settings.Metrics.Path
}

// GzipMiddleware configures Gzip compression for the server
func (s *Server) GzipMiddleware() echo.MiddlewareFunc {
	return middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     6,
		MinLength: 2048,
	})
}

// CacheControlMiddleware sets appropriate cache control headers based on the request path
func (s *Server) CacheControlMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			header := c.Response().Header()

			switch {
			case strings.HasPrefix(path, "/assets/"):
				header.Set("Cache-Control", "public, max-age=3600, must-revalidate")
				header.Set("ETag", generateETag(s.assetVersion+path))
			case strings.HasPrefix(path, "/api/"):
				header.Set("Cache-Control", "no-store")
				header.Set("Pragma", "no-cache")
				header.Set("Expires", "0")
			default:
				header.Set("Cache-Control", "no-store")
			}

			return next(c)
		}
	}
}

// generateETag creates a simple hash-based ETag for a given key
func generateETag(key string) string {
	h := sha256.New()
	h.Write([]byte(key))
	return fmt.Sprintf(`"%x"`, h.Sum(nil)[:8])
}
