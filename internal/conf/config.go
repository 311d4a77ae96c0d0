// Package conf loads and validates twfcode settings from YAML, environment and flags.
package conf

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/secrets"
)

// Settings contains all configuration options for the application.
type Settings struct {
	Debug bool `yaml:"debug" mapstructure:"debug"` // true to enable debug mode

	Site      SiteSettings         `yaml:"site" mapstructure:"site"`
	WebServer WebServerSettings    `yaml:"webserver" mapstructure:"webserver"`
	CMS       CMSSettings          `yaml:"cms" mapstructure:"cms"`
	Search    SearchSettings       `yaml:"search" mapstructure:"search"`
	Pages     PageSettings         `yaml:"pages" mapstructure:"pages"`
	Metrics   MetricsSettings      `yaml:"metrics" mapstructure:"metrics"`
	Sentry    SentrySettings       `yaml:"sentry" mapstructure:"sentry"`
	Logging   logger.LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// SiteSettings describes the public identity of the site.
type SiteSettings struct {
	Name        string `yaml:"name" mapstructure:"name"`               // shown in headers and document titles
	BaseURL     string `yaml:"baseurl" mapstructure:"baseurl"`         // absolute URL used in share links
	TitleSuffix string `yaml:"titlesuffix" mapstructure:"titlesuffix"` // appended to document titles, defaults to " | <name>"
	Description string `yaml:"description" mapstructure:"description"`
}

// WebServerSettings contains settings for the page server.
type WebServerSettings struct {
	Port         string        `yaml:"port" mapstructure:"port"`
	AutoTLS      bool          `yaml:"autotls" mapstructure:"autotls"` // obtain certificates via ACME
	Host         string        `yaml:"host" mapstructure:"host"`       // hostname for AutoTLS
	ReadTimeout  time.Duration `yaml:"readtimeout" mapstructure:"readtimeout"`
	WriteTimeout time.Duration `yaml:"writetimeout" mapstructure:"writetimeout"`
}

// CMSSettings configures the content API client.
type CMSSettings struct {
	BaseURL    string        `yaml:"baseurl" mapstructure:"baseurl"` // e.g. https://code.amsot.net/wp-json/wp/v2
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheTTL   time.Duration `yaml:"cachettl" mapstructure:"cachettl"`
	PerPage    int           `yaml:"perpage" mapstructure:"perpage"`
	RateLimit  float64       `yaml:"ratelimit" mapstructure:"ratelimit"` // requests per second, 0 disables
	Burst      int           `yaml:"burst" mapstructure:"burst"`
	UserAgent  string        `yaml:"useragent" mapstructure:"useragent"`
	MaxRetries int           `yaml:"maxretries" mapstructure:"maxretries"`
}

// SearchSettings configures search results.
type SearchSettings struct {
	PerPage    int `yaml:"perpage" mapstructure:"perpage"`
	DebounceMs int `yaml:"debouncems" mapstructure:"debouncems"` // header widget input debounce
}

// PageSettings configures list sizes on rendered pages.
type PageSettings struct {
	HomeLimit    int `yaml:"homelimit" mapstructure:"homelimit"`
	RelatedLimit int `yaml:"relatedlimit" mapstructure:"relatedlimit"`
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SentrySettings configures optional error reporting.
type SentrySettings struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN         string `yaml:"dsn" mapstructure:"dsn"`         // literal or ${VAR} reference
	DSNFile     string `yaml:"dsnfile" mapstructure:"dsnfile"` // mounted secret, takes precedence over dsn
	Environment string `yaml:"environment" mapstructure:"environment"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads defaults, the config file (if any) and environment variables into Settings.
// A missing config file is not an error.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	settings.applyDerived()
	if err := settings.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("error resolving secrets: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper registers defaults, config paths and env bindings, then reads the config file.
func initViper() error {
	setDefaultConfig(viper.GetViper())

	if err := configureEnvironmentVariables(); err != nil {
		return err
	}

	// An explicit --config flag has already called viper.SetConfigFile.
	if viper.ConfigFileUsed() == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			return fmt.Errorf("error getting default config paths: %w", err)
		}
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// applyDerived fills values computed from other settings.
func (s *Settings) applyDerived() {
	if s.Site.TitleSuffix == "" && s.Site.Name != "" {
		s.Site.TitleSuffix = " | " + s.Site.Name
	}
}

// resolveSecrets replaces secret references with their values.
func (s *Settings) resolveSecrets() error {
	dsn, err := secrets.Resolve(s.Sentry.DSNFile, s.Sentry.DSN)
	if err != nil {
		return err
	}
	s.Sentry.DSN = dsn
	return nil
}

// GetSettings returns the settings loaded by the last successful Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
