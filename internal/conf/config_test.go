package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate resets global viper state and runs the test from an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCMSBaseURL, settings.CMS.BaseURL)
	assert.Equal(t, 10*time.Second, settings.CMS.Timeout)
	assert.Equal(t, 5*time.Minute, settings.CMS.CacheTTL)
	assert.Equal(t, 100, settings.CMS.PerPage)
	assert.Equal(t, 9, settings.Search.PerPage)
	assert.Equal(t, 4, settings.Pages.RelatedLimit)
	assert.Equal(t, "TWF.code", settings.Site.Name)
	assert.Equal(t, " | TWF.code", settings.Site.TitleSuffix)
	assert.Equal(t, "8080", settings.WebServer.Port)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.Same(t, settings, GetSettings())
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := isolate(t)

	yaml := []byte(`
site:
  name: Snippets
webserver:
  port: "9090"
cms:
  baseurl: https://cms.example.com/wp-json/wp/v2
  cachettl: 30s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Snippets", settings.Site.Name)
	assert.Equal(t, " | Snippets", settings.Site.TitleSuffix)
	assert.Equal(t, "9090", settings.WebServer.Port)
	assert.Equal(t, "https://cms.example.com/wp-json/wp/v2", settings.CMS.BaseURL)
	assert.Equal(t, 30*time.Second, settings.CMS.CacheTTL)
	assert.Equal(t, 100, settings.CMS.PerPage, "unset keys keep defaults")
}

func TestLoadEnvironmentOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TWFCODE_CMS_BASEURL", "http://localhost:8000/wp-json/wp/v2")
	t.Setenv("TWFCODE_SEARCH_PERPAGE", "12")

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/wp-json/wp/v2", settings.CMS.BaseURL)
	assert.Equal(t, 12, settings.Search.PerPage)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("TWFCODE_WEBSERVER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWFCODE_WEBSERVER_PORT")
}

func TestWriteDefaultConfigRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path, false))
	require.Error(t, WriteDefaultConfig(path, false), "refuses to overwrite")
	require.NoError(t, WriteDefaultConfig(path, true))

	viper.SetConfigFile(path)
	settings, err := Load()
	require.NoError(t, err)

	defaults, err := DefaultSettings()
	require.NoError(t, err)
	assert.Equal(t, defaults.CMS, settings.CMS)
	assert.Equal(t, defaults.Pages, settings.Pages)
}

func TestLoadResolvesSentryDSN(t *testing.T) {
	dir := isolate(t)
	dsnFile := filepath.Join(dir, "sentry_dsn")
	require.NoError(t, os.WriteFile(dsnFile, []byte("https://key@sentry.test/7\n"), 0o600))

	t.Setenv("TWFCODE_SENTRY_ENABLED", "true")
	t.Setenv("TWFCODE_SENTRY_DSNFILE", dsnFile)

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://key@sentry.test/7", settings.Sentry.DSN)
}

func TestLoadRejectsUnresolvedDSN(t *testing.T) {
	isolate(t)
	t.Setenv("TWFCODE_SENTRY_DSN", "${TWFCODE_TEST_MISSING_DSN}")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWFCODE_TEST_MISSING_DSN")
}
