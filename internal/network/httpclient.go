// File: internal/network/httpclient.go
package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/xkilldash9x/courier/internal/observability"
)

// Defaults for talking to a remote automation server. Servers answer one
// command at a time but clients poll them rapidly, so the per-host connection
// ceiling is deliberately far above the standard library default.
const (
	DefaultDialTimeout         = 5 * time.Second
	DefaultKeepAliveInterval   = 30 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
	DefaultRequestTimeout      = 60 * time.Second

	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 32
	DefaultMaxConnsPerHost     = 2000
	DefaultIdleConnTimeout     = 90 * time.Second
)

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	// Security settings
	IgnoreTLSErrors bool
	TLSConfig       *tls.Config

	// RequestTimeout bounds a whole round trip, including reading the body.
	RequestTimeout      time.Duration
	TLSHandshakeTimeout time.Duration
	// ResponseHeaderTimeout is zero by default; script execution commands can
	// legitimately hold the response for a long time.
	ResponseHeaderTimeout time.Duration

	DialerConfig *DialerConfig

	// Connection pool settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	// Protocol settings
	ForceHTTP2         bool
	DisableKeepAlives  bool
	DisableCompression bool

	// ProxyURL routes every request through an explicit proxy. When nil the
	// proxy is taken from the environment (HTTP_PROXY, NO_PROXY, ...).
	ProxyURL *url.URL

	// UserAgent is sent with every request.
	UserAgent string

	Logger *zap.Logger
}

// Client is a thin wrapper around the standard http.Client.
//
// Callers must close Response.Body after consuming it, or the connection
// cannot return to the pool.
type Client struct {
	*http.Client
}

// BuildUserAgent returns the User-Agent string for the given client version.
func BuildUserAgent(version string) string {
	goVersion := strings.TrimPrefix(runtime.Version(), "go")
	return fmt.Sprintf("courier/%s (go %s; %s/%s)", version, goVersion, runtime.GOOS, runtime.GOARCH)
}

// NewDefaultClientConfig creates a configuration tuned for a remote automation server.
func NewDefaultClientConfig() *ClientConfig {
	dialerCfg := NewDialerConfig()
	dialerCfg.Timeout = DefaultDialTimeout
	dialerCfg.KeepAlive = DefaultKeepAliveInterval
	// Commands are small request/response pairs; Nagle only adds latency.
	dialerCfg.ForceNoDelay = true

	return &ClientConfig{
		DialerConfig:        dialerCfg,
		RequestTimeout:      DefaultRequestTimeout,
		TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		MaxConnsPerHost:     DefaultMaxConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		UserAgent:           BuildUserAgent("dev"),
		Logger:              observability.GetLogger().Named("httpclient"),
	}
}

// NewHTTPTransport creates and configures an http.Transport based on the provided configuration.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dialerCfg := config.DialerConfig.Clone()

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return DialTCPContext(ctx, network, addr, dialerCfg)
		},
		TLSClientConfig:       configureTLS(config),
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		DisableKeepAlives:     config.DisableKeepAlives,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		// Decompression is done by CompressionMiddleware, which also handles brotli.
		DisableCompression: true,
		ForceAttemptHTTP2:  config.ForceHTTP2,
		Proxy:              http.ProxyFromEnvironment,
	}

	if config.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(config.ProxyURL)
	}

	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	} else if len(transport.TLSClientConfig.NextProtos) == 0 {
		transport.TLSClientConfig.NextProtos = []string{"http/1.1"}
	}

	return transport
}

// NewClient creates the client wrapper using the configured transport.
// Redirects are followed: older servers answer session creation with a
// 303 pointing at the new session resource.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}

	var rt http.RoundTripper = NewHTTPTransport(config)
	if !config.DisableCompression {
		rt = NewCompressionMiddleware(rt)
	}

	return &Client{
		Client: &http.Client{
			Transport: rt,
			Timeout:   config.RequestTimeout,
		},
	}
}

// configureTLS clones the caller's TLS settings, or builds defaults, and
// enforces TLS 1.2 as the floor.
func configureTLS(config *ClientConfig) *tls.Config {
	var tlsConfig *tls.Config
	if config.TLSConfig != nil {
		tlsConfig = config.TLSConfig.Clone()
	} else {
		tlsConfig = &tls.Config{
			ClientSessionCache: tls.NewLRUClientSessionCache(64),
		}
	}
	if tlsConfig.MinVersion < tls.VersionTLS12 {
		tlsConfig.MinVersion = tls.VersionTLS12
	}
	// Local drivers commonly sit behind self signed certificates.
	tlsConfig.InsecureSkipVerify = config.IgnoreTLSErrors
	return tlsConfig
}
