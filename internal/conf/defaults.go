// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Default values shared with other packages.
const (
	DefaultCMSBaseURL   = "https://code.amsot.net/wp-json/wp/v2"
	DefaultSiteName     = "TWF.code"
	DefaultSiteBaseURL  = "https://code.amsot.net"
	DefaultPort         = "8080"
	DefaultPerPage      = 100
	DefaultSearchLimit  = 9
	DefaultRelatedLimit = 4
	DefaultHomeLimit    = 6
	DefaultDebounceMs   = 400
)

// setDefaultConfig sets default values for every configuration key.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("site.name", DefaultSiteName)
	v.SetDefault("site.baseurl", DefaultSiteBaseURL)
	v.SetDefault("site.titlesuffix", "")
	v.SetDefault("site.description", "Snippets de código listos para copiar y pegar")

	v.SetDefault("webserver.port", DefaultPort)
	v.SetDefault("webserver.autotls", false)
	v.SetDefault("webserver.host", "")
	v.SetDefault("webserver.readtimeout", 15*time.Second)
	v.SetDefault("webserver.writetimeout", 30*time.Second)

	v.SetDefault("cms.baseurl", DefaultCMSBaseURL)
	v.SetDefault("cms.timeout", 10*time.Second)
	v.SetDefault("cms.cachettl", 5*time.Minute)
	v.SetDefault("cms.perpage", DefaultPerPage)
	v.SetDefault("cms.ratelimit", 5.0)
	v.SetDefault("cms.burst", 10)
	v.SetDefault("cms.useragent", "twfcode/1.0")
	v.SetDefault("cms.maxretries", 3)

	v.SetDefault("search.perpage", DefaultSearchLimit)
	v.SetDefault("search.debouncems", DefaultDebounceMs)

	v.SetDefault("pages.homelimit", DefaultHomeLimit)
	v.SetDefault("pages.relatedlimit", DefaultRelatedLimit)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.dsnfile", "")
	v.SetDefault("sentry.environment", "production")

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "logs/twfcode.log")
	v.SetDefault("logging.file_output.level", "info")
}
