// env.go - Environment variable configuration for twfcode
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TWFCODE_CMS_BASEURL.
const EnvPrefix = "TWFCODE"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings lists explicitly validated variables; other keys still resolve via AutomaticEnv.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "TWFCODE_DEBUG", validateEnvBool},
		{"webserver.port", "TWFCODE_WEBSERVER_PORT", validateEnvPort},
		{"cms.baseurl", "TWFCODE_CMS_BASEURL", validateEnvURL},
		{"site.baseurl", "TWFCODE_SITE_BASEURL", validateEnvURL},
		{"sentry.dsn", "TWFCODE_SENTRY_DSN", nil},
		{"sentry.dsnfile", "TWFCODE_SENTRY_DSNFILE", nil},
		{"sentry.enabled", "TWFCODE_SENTRY_ENABLED", validateEnvBool},
		{"metrics.enabled", "TWFCODE_METRICS_ENABLED", validateEnvBool},
	}
}

// bindEnvVars binds each variable and validates values that are set
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if value := os.Getenv(binding.EnvVar); value != "" {
			if err := binding.Validate(value); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, value, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	return err
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port out of range")
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return bindEnvVars()
}
