package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/devadigapratham/zpl2pdf/i18n"
	"github.com/devadigapratham/zpl2pdf/logging"
)

// Configuration keys. Each one maps to the environment variable of the same
// name in upper case and to the same key in the optional YAML config file.
const (
	KeyHTTPAddr         = "http_addr"
	KeyZPLAPIURL        = "zpl_api_url"
	KeyAllowedPDFDomain = "allowed_pdf_domain"
	KeyLocale           = "locale"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyUpstreamTimeout  = "upstream_timeout"
)

// DefaultHTTPAddr is the listen address when none is configured
const DefaultHTTPAddr = ":3000"

// Config represents the application configuration
type Config struct {
	// Server configuration
	HTTPAddr string

	// ZPLAPIURL is the external converter endpoint. Empty disables /api/convert.
	ZPLAPIURL string
	// AllowedPDFDomain is the only host the PDF proxy fetches from. Empty
	// disables /api/pdf-proxy.
	AllowedPDFDomain string

	Locale    string
	LogLevel  string
	LogFormat string

	// UpstreamTimeout bounds calls to the converter and the PDF host. Zero
	// means no timeout.
	UpstreamTimeout time.Duration
}

// SetDefaults registers default values and environment bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPAddr, DefaultHTTPAddr)
	v.SetDefault(KeyLocale, i18n.DefaultLocale.String())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyUpstreamTimeout, time.Duration(0))

	for _, key := range []string{
		KeyHTTPAddr, KeyZPLAPIURL, KeyAllowedPDFDomain, KeyLocale,
		KeyLogLevel, KeyLogFormat, KeyUpstreamTimeout,
	} {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
}

// Load reads the configuration from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:         strings.TrimSpace(v.GetString(KeyHTTPAddr)),
		ZPLAPIURL:        strings.TrimSpace(v.GetString(KeyZPLAPIURL)),
		AllowedPDFDomain: strings.TrimSpace(v.GetString(KeyAllowedPDFDomain)),
		Locale:           strings.TrimSpace(v.GetString(KeyLocale)),
		LogLevel:         strings.TrimSpace(v.GetString(KeyLogLevel)),
		LogFormat:        strings.TrimSpace(v.GetString(KeyLogFormat)),
		UpstreamTimeout:  v.GetDuration(KeyUpstreamTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration. Missing converter or domain settings are
// allowed; the corresponding endpoint then reports itself as not configured.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP address is required")
	}

	if c.ZPLAPIURL != "" {
		u, err := url.Parse(c.ZPLAPIURL)
		if err != nil {
			return fmt.Errorf("invalid ZPL_API_URL: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid ZPL_API_URL %q: must be an absolute http(s) URL", c.ZPLAPIURL)
		}
	}

	if c.AllowedPDFDomain != "" && strings.ContainsAny(c.AllowedPDFDomain, "/:@ ") {
		return fmt.Errorf("invalid ALLOWED_PDF_DOMAIN %q: must be a bare hostname", c.AllowedPDFDomain)
	}

	if _, err := i18n.ParseLocale(c.Locale); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}

	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative")
	}

	return nil
}

// ConverterConfigured reports whether /api/convert is enabled
func (c *Config) ConverterConfigured() bool {
	return c.ZPLAPIURL != ""
}

// ProxyConfigured reports whether /api/pdf-proxy is enabled
func (c *Config) ProxyConfigured() bool {
	return c.AllowedPDFDomain != ""
}
