// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct and reports every problem found.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	for _, check := range []func(*Settings) error{
		func(s *Settings) error { return validateSiteSettings(&s.Site) },
		func(s *Settings) error { return validateWebServerSettings(&s.WebServer) },
		func(s *Settings) error { return validateCMSSettings(&s.CMS) },
		func(s *Settings) error { return validatePageSettings(s) },
		func(s *Settings) error { return validateSentrySettings(&s.Sentry) },
	} {
		if err := check(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateSiteSettings(settings *SiteSettings) error {
	if settings.Name == "" {
		return fmt.Errorf("site name must not be empty")
	}
	if err := validateAbsoluteURL(settings.BaseURL); err != nil {
		return fmt.Errorf("site base URL: %w", err)
	}
	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	port, err := strconv.Atoi(settings.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid web server port %q", settings.Port)
	}
	if settings.AutoTLS && settings.Host == "" {
		return fmt.Errorf("webserver host is required when autotls is enabled")
	}
	return nil
}

func validateCMSSettings(settings *CMSSettings) error {
	if err := validateAbsoluteURL(settings.BaseURL); err != nil {
		return fmt.Errorf("cms base URL: %w", err)
	}
	if settings.Timeout <= 0 {
		return fmt.Errorf("cms timeout must be positive")
	}
	// The content API caps per_page at 100.
	if settings.PerPage < 1 || settings.PerPage > 100 {
		return fmt.Errorf("cms perpage must be between 1 and 100, got %d", settings.PerPage)
	}
	if settings.RateLimit < 0 {
		return fmt.Errorf("cms ratelimit must not be negative")
	}
	if settings.MaxRetries < 1 {
		return fmt.Errorf("cms maxretries must be at least 1")
	}
	return nil
}

func validatePageSettings(settings *Settings) error {
	if settings.Search.PerPage < 1 || settings.Search.PerPage > 100 {
		return fmt.Errorf("search perpage must be between 1 and 100, got %d", settings.Search.PerPage)
	}
	if settings.Pages.HomeLimit < 1 || settings.Pages.RelatedLimit < 0 {
		return fmt.Errorf("invalid page limits: home=%d related=%d", settings.Pages.HomeLimit, settings.Pages.RelatedLimit)
	}
	return nil
}

func validateSentrySettings(settings *SentrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return fmt.Errorf("sentry dsn is required when sentry is enabled")
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
