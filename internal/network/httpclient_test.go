// internal/network/httpclient_test.go
package network

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Test Cases: Configuration and Defaults (ClientConfig) --

func TestNewDefaultClientConfig_RemoteServerDefaults(t *testing.T) {
	config := NewDefaultClientConfig()

	assert.Equal(t, DefaultRequestTimeout, config.RequestTimeout)
	assert.Equal(t, 2000, config.MaxConnsPerHost, "per-host ceiling must stay high for rapid polling")
	assert.Equal(t, DefaultMaxIdleConnsPerHost, config.MaxIdleConnsPerHost)
	assert.Zero(t, config.ResponseHeaderTimeout)
	assert.False(t, config.ForceHTTP2)
	assert.False(t, config.DisableKeepAlives)
	assert.Nil(t, config.ProxyURL)
	require.NotNil(t, config.DialerConfig)
	assert.True(t, config.DialerConfig.ForceNoDelay, "TCP_NODELAY should be enabled for command traffic")
	assert.NotNil(t, config.Logger)
	assert.True(t, strings.HasPrefix(config.UserAgent, "courier/dev ("))
}

func TestBuildUserAgent(t *testing.T) {
	ua := BuildUserAgent("1.2.3")
	goVersion := strings.TrimPrefix(runtime.Version(), "go")
	assert.Equal(t, "courier/1.2.3 (go "+goVersion+"; "+runtime.GOOS+"/"+runtime.GOARCH+")", ua)
}

func TestConfigureTLS(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config := NewDefaultClientConfig()
		tlsConfig := configureTLS(config)

		require.NotNil(t, tlsConfig)
		assert.Equal(t, uint16(tls.VersionTLS12), tlsConfig.MinVersion)
		assert.False(t, tlsConfig.InsecureSkipVerify)
		assert.NotNil(t, tlsConfig.ClientSessionCache)
	})

	t.Run("custom config is cloned and hardened", func(t *testing.T) {
		custom := &tls.Config{MinVersion: tls.VersionTLS10, ServerName: "grid.internal"}
		config := NewDefaultClientConfig()
		config.TLSConfig = custom
		config.IgnoreTLSErrors = true

		tlsConfig := configureTLS(config)
		assert.NotSame(t, custom, tlsConfig)
		assert.Equal(t, uint16(tls.VersionTLS12), tlsConfig.MinVersion)
		assert.Equal(t, "grid.internal", tlsConfig.ServerName)
		assert.True(t, tlsConfig.InsecureSkipVerify)
		assert.Equal(t, uint16(tls.VersionTLS10), custom.MinVersion, "caller's config must not be modified")
	})
}

func TestNewHTTPTransport_ConfigurationMapping(t *testing.T) {
	config := NewDefaultClientConfig()
	config.MaxConnsPerHost = 7
	config.MaxIdleConnsPerHost = 3
	config.IdleConnTimeout = 42 * time.Second
	config.DisableKeepAlives = true

	transport := NewHTTPTransport(config)
	assert.Equal(t, 7, transport.MaxConnsPerHost)
	assert.Equal(t, 3, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 42*time.Second, transport.IdleConnTimeout)
	assert.True(t, transport.DisableKeepAlives)
	assert.True(t, transport.DisableCompression, "decompression belongs to the middleware")
}

func TestNewHTTPTransport_Robustness_NilConfig(t *testing.T) {
	assert.NotPanics(t, func() {
		transport := NewHTTPTransport(nil)
		assert.NotNil(t, transport)
	})
}

func TestNewHTTPTransport_ProxyConfiguration(t *testing.T) {
	target, _ := http.NewRequest(http.MethodGet, "http://grid.example.com/status", nil)

	t.Run("explicit proxy", func(t *testing.T) {
		proxyURL, _ := url.Parse("http://proxy.internal:3128")
		config := NewDefaultClientConfig()
		config.ProxyURL = proxyURL

		transport := NewHTTPTransport(config)
		require.NotNil(t, transport.Proxy)
		got, err := transport.Proxy(target)
		require.NoError(t, err)
		assert.Equal(t, proxyURL.String(), got.String())
	})

	t.Run("environment fallback", func(t *testing.T) {
		transport := NewHTTPTransport(NewDefaultClientConfig())
		assert.NotNil(t, transport.Proxy, "environment proxy settings should be honored")
	})
}

func TestNewHTTPTransport_HTTP2(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		config := NewDefaultClientConfig()
		config.ForceHTTP2 = true
		transport := NewHTTPTransport(config)
		assert.True(t, transport.ForceAttemptHTTP2)
		assert.Contains(t, transport.TLSClientConfig.NextProtos, "h2")
	})

	t.Run("disabled", func(t *testing.T) {
		transport := NewHTTPTransport(NewDefaultClientConfig())
		assert.False(t, transport.ForceAttemptHTTP2)
		assert.Equal(t, []string{"http/1.1"}, transport.TLSClientConfig.NextProtos)
	})
}

func TestNewClient_Wiring(t *testing.T) {
	config := NewDefaultClientConfig()
	config.RequestTimeout = 3 * time.Second

	client := NewClient(config)
	assert.Equal(t, 3*time.Second, client.Timeout)
	assert.IsType(t, &CompressionMiddleware{}, client.Transport)

	config.DisableCompression = true
	plain := NewClient(config)
	assert.IsType(t, &http.Transport{}, plain.Transport)
}

func TestNewClient_FollowsSeeOtherRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			http.Redirect(w, r, "/session/abc", http.StatusSeeOther)
		case "/session/abc":
			assert.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"sessionId":"abc","status":0,"value":{}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(NewDefaultClientConfig())
	defer client.CloseIdleConnections()

	resp, err := client.Post(server.URL+"/session", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"sessionId":"abc"`)
}

func TestClient_InsecureSkipVerify_Integration(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK Insecure")
	}))
	defer server.Close()

	strict := NewClient(NewDefaultClientConfig())
	_, err := strict.Get(server.URL)
	assert.Error(t, err, "self signed certificates are rejected by default")

	config := NewDefaultClientConfig()
	config.IgnoreTLSErrors = true
	insecure := NewClient(config)
	defer insecure.CloseIdleConnections()

	resp, err := insecure.Get(server.URL)
	require.NoError(t, err, "Client with IgnoreTLSErrors should succeed")
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK Insecure", string(body))
}

func TestClient_Behavior_ConnectionPooling(t *testing.T) {
	remoteAddrs := make(map[string]bool)
	var mutex sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mutex.Lock()
		remoteAddrs[r.RemoteAddr] = true
		mutex.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(NewDefaultClientConfig())
	defer client.CloseIdleConnections()

	iterations := 5
	for i := 0; i < iterations; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		// Must read and close the body to allow connection reuse.
		io.ReadAll(resp.Body)
		resp.Body.Close()
	}

	mutex.Lock()
	defer mutex.Unlock()
	assert.Len(t, remoteAddrs, 1, "sequential requests should share one connection")
}
