package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := DefaultSettings()
	require.NoError(t, err)
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateSettings(validSettings(t)))
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"bad port", func(s *Settings) { s.WebServer.Port = "70000" }, "invalid web server port"},
		{"autotls without host", func(s *Settings) { s.WebServer.AutoTLS = true }, "host is required"},
		{"relative cms url", func(s *Settings) { s.CMS.BaseURL = "/wp-json" }, "cms base URL"},
		{"per page too large", func(s *Settings) { s.CMS.PerPage = 101 }, "cms perpage"},
		{"zero timeout", func(s *Settings) { s.CMS.Timeout = 0 }, "cms timeout"},
		{"no retries", func(s *Settings) { s.CMS.MaxRetries = 0 }, "maxretries"},
		{"sentry without dsn", func(s *Settings) { s.Sentry.Enabled = true }, "sentry dsn"},
		{"empty site name", func(s *Settings) { s.Site.Name = "" }, "site name"},
		{"search per page", func(s *Settings) { s.Search.PerPage = 0 }, "search perpage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings(t)
			tt.mutate(s)

			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettingsCollectsAllErrors(t *testing.T) {
	t.Parallel()

	s := validSettings(t)
	s.WebServer.Port = "0"
	s.CMS.PerPage = 0

	err := ValidateSettings(s)
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}
