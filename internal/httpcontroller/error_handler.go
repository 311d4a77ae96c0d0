package httpcontroller

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/telemetry"
)

// statusMessages are the visitor-facing texts of the error page.
var statusMessages = map[int]struct{ heading, message string }{
	http.StatusBadRequest:          {"Solicitud no válida", "La petición no se pudo procesar."},
	http.StatusNotFound:            {"Página no encontrada", "El contenido que buscas no existe o se ha movido."},
	http.StatusMethodNotAllowed:    {"Método no permitido", "Esta dirección no admite ese método."},
	http.StatusServiceUnavailable:  {"Contenido no disponible", "No pudimos cargar el contenido. Inténtalo de nuevo en unos minutos."},
	http.StatusInternalServerError: {"Error interno", "Algo salió mal al generar esta página."},
}

func statusHeading(status int) string {
	if m, ok := statusMessages[status]; ok {
		return m.heading
	}
	return http.StatusText(status)
}

func statusMessage(status int) string {
	if m, ok := statusMessages[status]; ok {
		return m.message
	}
	return http.StatusText(status)
}

// getStatusCodeFromError determines the appropriate HTTP status code based on error type
func getStatusCodeFromError(err error) int {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code
	}

	switch errors.CategoryOf(err) {
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryNetwork, errors.CategoryHTTP, errors.CategoryLimit,
		errors.CategoryTimeout, errors.CategoryFileParsing, errors.CategoryCancellation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// customHTTPErrorHandler renders errors as the error page, or as JSON under /api/.
// Server-side failures are logged and reported to telemetry.
func (s *Server) customHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := getStatusCodeFromError(err)
	req := c.Request()
	log := s.requestLogger(c)

	switch {
	case errors.IsCategory(err, errors.CategoryCancellation):
		// The visitor went away; nothing failed on our side.
		log.Debug("request cancelled",
			logger.String("path", req.URL.Path),
			logger.Error(err))
	case status >= http.StatusInternalServerError:
		log.Error("request failed",
			logger.String("path", req.URL.Path),
			logger.Int("status", status),
			logger.String("category", string(errors.CategoryOf(err))),
			logger.Error(err))
		telemetry.CaptureError(err, componentName)
		if s.Metrics != nil {
			s.Metrics.HTTP.RecordHTTPRequestError(req.Method, c.Path(), string(errors.CategoryOf(err)))
		}
	default:
		log.Debug("request rejected",
			logger.String("path", req.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}

	var respErr error
	switch {
	case req.Method == http.MethodHead:
		respErr = c.NoContent(status)
	case strings.HasPrefix(req.URL.Path, "/api/"):
		respErr = c.JSON(status, map[string]string{"error": statusHeading(status)})
	default:
		respErr = s.renderPage(c, status, "error", statusHeading(status), errorView{
			Status:  status,
			Heading: statusHeading(status),
			Message: statusMessage(status),
		})
		if respErr != nil {
			respErr = c.String(status, statusHeading(status))
		}
	}
	if respErr != nil {
		log.Error("failed to send error response", logger.Error(respErr))
	}
}
