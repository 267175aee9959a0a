// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Remote() RemoteConfig
	Probe() ProbeConfig

	// Remote setters for programmatic overrides.
	SetRemoteURL(string)
	SetRemoteTimeout(time.Duration)
	SetRemoteKeepAlive(bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	RemoteCfg RemoteConfig `mapstructure:"remote" yaml:"remote"`
	ProbeCfg  ProbeConfig  `mapstructure:"probe" yaml:"probe"`
}

var _ Interface = (*Config)(nil)

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Remote() RemoteConfig { return c.RemoteCfg }
func (c *Config) Probe() ProbeConfig   { return c.ProbeCfg }

func (c *Config) SetRemoteURL(u string)             { c.RemoteCfg.URL = u }
func (c *Config) SetRemoteTimeout(d time.Duration)  { c.RemoteCfg.Timeout = d }
func (c *Config) SetRemoteKeepAlive(keepAlive bool) { c.RemoteCfg.KeepAlive = keepAlive }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// RemoteConfig describes the remote automation server and how to talk to it.
type RemoteConfig struct {
	// URL is the server base address, e.g. http://localhost:4444/wd/hub.
	// Credentials in the userinfo part are sent as Basic auth.
	URL                 string        `mapstructure:"url" yaml:"url"`
	Timeout             time.Duration `mapstructure:"timeout" yaml:"timeout"`
	KeepAlive           bool          `mapstructure:"keep_alive" yaml:"keep_alive"`
	ProxyURL            string        `mapstructure:"proxy_url" yaml:"proxy_url"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host" yaml:"max_conns_per_host"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host" yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	IgnoreTLSErrors     bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile             string `mapstructure:"ca_file" yaml:"ca_file"`
	ForceHTTP2         bool   `mapstructure:"force_http2" yaml:"force_http2"`
	DisableCompression bool   `mapstructure:"disable_compression" yaml:"disable_compression"`
}

// ProbeConfig drives the connection reuse probe.
type ProbeConfig struct {
	// PageURL is the page navigated to once the session is up.
	PageURL string `mapstructure:"page_url" yaml:"page_url"`
	// Using and Locator select the element that is polled.
	Using   string `mapstructure:"using" yaml:"using"`
	Locator string `mapstructure:"locator" yaml:"locator"`
	Polls   int    `mapstructure:"polls" yaml:"polls"`
	// Rate is the maximum number of polls per second per session.
	Rate     float64 `mapstructure:"rate" yaml:"rate"`
	Burst    int     `mapstructure:"burst" yaml:"burst"`
	Sessions int     `mapstructure:"sessions" yaml:"sessions"`
	// Browser is the browserName capability requested for each session.
	Browser string `mapstructure:"browser" yaml:"browser"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "courier")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Remote --
	v.SetDefault("remote.url", "http://localhost:4444/wd/hub")
	v.SetDefault("remote.timeout", "60s")
	v.SetDefault("remote.keep_alive", true)
	v.SetDefault("remote.proxy_url", "")
	v.SetDefault("remote.max_conns_per_host", 2000)
	v.SetDefault("remote.max_idle_conns_per_host", 32)
	v.SetDefault("remote.idle_conn_timeout", "90s")
	v.SetDefault("remote.ignore_tls_errors", false)
	v.SetDefault("remote.ca_file", "")
	v.SetDefault("remote.force_http2", false)
	v.SetDefault("remote.disable_compression", false)

	// -- Probe --
	v.SetDefault("probe.page_url", "about:blank")
	v.SetDefault("probe.using", "css selector")
	v.SetDefault("probe.locator", "body")
	v.SetDefault("probe.polls", 100)
	v.SetDefault("probe.rate", 50.0)
	v.SetDefault("probe.burst", 1)
	v.SetDefault("probe.sessions", 1)
	v.SetDefault("probe.browser", "chrome")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.RemoteCfg.Validate(); err != nil {
		return fmt.Errorf("remote configuration invalid: %w", err)
	}
	if err := c.ProbeCfg.Validate(); err != nil {
		return fmt.Errorf("probe configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the remote server settings.
func (r *RemoteConfig) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("remote.url is a required configuration field")
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("remote.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote.url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("remote.url must include a host")
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive")
	}
	if r.MaxConnsPerHost < 0 || r.MaxIdleConnsPerHost < 0 {
		return fmt.Errorf("remote connection limits must not be negative")
	}
	if r.ProxyURL != "" {
		if _, err := url.Parse(r.ProxyURL); err != nil {
			return fmt.Errorf("remote.proxy_url is not a valid URL: %w", err)
		}
	}
	return nil
}

// Validate checks the probe settings.
func (p *ProbeConfig) Validate() error {
	if p.Polls < 0 {
		return fmt.Errorf("probe.polls must not be negative")
	}
	if p.Rate <= 0 {
		return fmt.Errorf("probe.rate must be positive")
	}
	if p.Burst <= 0 {
		return fmt.Errorf("probe.burst must be a positive integer")
	}
	if p.Sessions <= 0 {
		return fmt.Errorf("probe.sessions must be a positive integer")
	}
	return nil
}
