// Package telemetry provides opt-in error reporting to Sentry.
//
// Reporting is disabled unless sentry.enabled is set and a DSN is configured.
// Once initialized, enhanced errors built with the errors package are
// forwarded automatically through errors.SetTelemetryReporter.
package telemetry

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
)

// Config holds the Sentry client options.
type Config struct {
	Enabled     bool
	DSN         string
	Environment string
	Release     string // e.g. twfcode@1.2.0

	// Transport replaces the HTTP transport; tests pass a recording transport.
	Transport sentry.Transport
}

var (
	initMu      sync.Mutex
	initialized bool
)

// Init configures the Sentry SDK and registers it as the error reporter.
// It is a no-op when reporting is disabled.
func Init(cfg Config) error {
	log := GetLogger()
	if !cfg.Enabled || cfg.DSN == "" {
		log.Info("Sentry telemetry is disabled")
		return nil
	}

	initMu.Lock()
	defer initMu.Unlock()

	environment := cfg.Environment
	if environment == "" {
		environment = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment,
		Release:          cfg.Release,
		ServerName:       "", // keep hostnames out of events
		Transport:        cfg.Transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetContext("application", map[string]any{
			"name":    "twfcode",
			"release": cfg.Release,
		})
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	initialized = true

	log.Info("Sentry telemetry initialized",
		logger.String("environment", environment),
		logger.String("release", cfg.Release))
	return nil
}

// Enabled reports whether Init configured a client.
func Enabled() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return initialized
}

// applyPrivacyFilters strips user, host and device data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	if event.Request != nil {
		event.Request.Cookies = ""
		event.Request.Headers = nil
		event.Request.Env = nil
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	return event
}

// CaptureError reports err unless it was already reported through the
// enhanced error pipeline.
func CaptureError(err error, component string) {
	if err == nil || !Enabled() {
		return
	}

	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		if ee.IsReported() {
			return
		}
		if reporter := errors.GetTelemetryReporter(); reporter != nil {
			reporter.ReportError(ee)
			ee.MarkReported()
			return
		}
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetFingerprint([]string{component, fmt.Sprintf("%T", err)})
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) {
	if Enabled() {
		sentry.Flush(timeout)
	}
}

// GetLogger returns the telemetry module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
