// File: internal/network/transport.go
package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	defaultAccept = "application/json, image/png"
	jsonAccept    = "application/json;charset=utf-8"
	jsonContent   = "application/json;charset=utf-8"
)

// Request is a single command exchange with the remote server.
type Request struct {
	Method string
	URL    *url.URL
	// Body is sent only for POST requests.
	Body []byte
}

// RawResponse is the undecoded server answer.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        string
}

// Transport sends requests to a remote automation server.
type Transport interface {
	Send(ctx context.Context, req *Request) (*RawResponse, error)
	Close() error
}

// HTTPTransport is the Transport backed by a pooled http.Client. The client is
// built on the first Send and reused for the lifetime of the transport.
type HTTPTransport struct {
	config *ClientConfig
	logger *zap.Logger

	once   sync.Once
	client *Client
	builds atomic.Int32
	closed atomic.Bool
}

var _ Transport = (*HTTPTransport)(nil)

// NewTransport creates an HTTPTransport. A nil config uses NewDefaultClientConfig.
func NewTransport(config *ClientConfig) *HTTPTransport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPTransport{
		config: config,
		logger: logger.Named("transport"),
	}
}

func (t *HTTPTransport) httpClient() *Client {
	t.once.Do(func() {
		t.client = NewClient(t.config)
		t.builds.Add(1)
		t.logger.Debug("HTTP client created",
			zap.Int("max_conns_per_host", t.config.MaxConnsPerHost),
			zap.Bool("keep_alive", !t.config.DisableKeepAlives),
			zap.Duration("timeout", t.config.RequestTimeout))
	})
	return t.client
}

// Send performs one HTTP exchange and returns the undecoded response.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*RawResponse, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if req == nil || req.URL == nil {
		return nil, fmt.Errorf("send: request and URL are required")
	}

	target := *req.URL
	creds := target.User
	target.User = nil
	destination := target.String()

	var body io.Reader
	if req.Method == http.MethodPost {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, destination, body)
	if err != nil {
		return nil, &TransportError{Kind: KindFailure, URL: redact(&target), Err: err}
	}

	httpReq.Header.Set("Accept", defaultAccept)
	if t.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", t.config.UserAgent)
	}
	switch req.Method {
	case http.MethodGet:
		httpReq.Header.Set("Cache-Control", "no-cache")
	case http.MethodPost:
		httpReq.Header.Add("Accept", jsonAccept)
		httpReq.Header.Set("Content-Type", jsonContent)
	}
	if t.config.DisableKeepAlives {
		httpReq.Close = true
	}
	if creds != nil {
		if password, ok := creds.Password(); ok {
			httpReq.SetBasicAuth(creds.Username(), password)
		}
	}

	// Close may have consumed the once after the closed check above.
	client := t.httpClient()
	if client == nil {
		return nil, ErrTransportClosed
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, t.classify(destination, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestTimeout {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{
			Kind:       KindTimeout,
			URL:        destination,
			Timeout:    t.config.RequestTimeout.Seconds(),
			StatusCode: resp.StatusCode,
		}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, t.classify(destination, fmt.Errorf("failed to read response body: %w", err))
	}

	contentType := resp.Header.Get("Content-Type")
	if len(payload) == 0 && contentType == "" {
		return nil, &TransportError{Kind: KindNoContent, URL: destination, StatusCode: resp.StatusCode}
	}

	t.logger.Debug("Response received",
		zap.String("method", req.Method),
		zap.String("url", destination),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(payload)))

	return &RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        string(payload),
	}, nil
}

func (t *HTTPTransport) classify(destination string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TransportError{
			Kind:    KindTimeout,
			URL:     destination,
			Timeout: t.config.RequestTimeout.Seconds(),
			Err:     err,
		}
	}
	return &TransportError{Kind: KindFailure, URL: destination, Err: err}
}

// Close releases pooled connections. Subsequent Sends fail with
// ErrTransportClosed. Calling Close more than once is a no-op.
func (t *HTTPTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	// Consume the once so a client can no longer be built.
	t.once.Do(func() {})
	if t.client != nil {
		t.client.CloseIdleConnections()
		t.logger.Debug("HTTP client closed")
	}
	return nil
}
