// File: internal/executor/executor.go
package executor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/courier/api/schemas"
	"github.com/xkilldash9x/courier/internal/commandinfo"
	"github.com/xkilldash9x/courier/internal/config"
	"github.com/xkilldash9x/courier/internal/network"
	"github.com/xkilldash9x/courier/internal/security"
)

// Option configures an Executor.
type Option func(*options)

type options struct {
	transport  network.Transport
	negotiator *Negotiator
	logger     *zap.Logger
	legacy     commandinfo.Repository
	standard   commandinfo.Repository
	userAgent  string
}

// WithTransport replaces the HTTP transport, typically with a test double.
func WithTransport(t network.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithNegotiator supplies a preconfigured negotiator. It takes precedence
// over WithRepositories.
func WithNegotiator(n *Negotiator) Option {
	return func(o *options) { o.negotiator = n }
}

// WithLogger sets the executor's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRepositories overrides the command tables, e.g. with tables extended
// by vendor specific commands.
func WithRepositories(legacy, standardized commandinfo.Repository) Option {
	return func(o *options) {
		o.legacy = legacy
		o.standard = standardized
	}
}

// WithUserAgent overrides the User-Agent of the default transport.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// Executor sends commands to one remote automation server. Calls are
// serialized: an executor has at most one request in flight.
type Executor struct {
	mu         sync.Mutex
	baseURL    *url.URL
	transport  network.Transport
	negotiator *Negotiator
	logger     *zap.Logger
	closed     bool
}

// New creates an executor for the server described by cfg. The HTTP client
// is not created until the first command is executed.
func New(cfg config.RemoteConfig, opts ...Option) (*Executor, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	logger := o.logger.Named("executor")

	baseURL, err := parseBaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	negotiator := o.negotiator
	if negotiator == nil && o.legacy == nil && o.standard == nil {
		negotiator = NewDefaultNegotiator(WithNegotiatorLogger(logger))
	} else if negotiator == nil {
		legacy, standard := o.legacy, o.standard
		if legacy == nil {
			legacy = commandinfo.ForDialect(commandinfo.DialectLegacy)
		}
		if standard == nil {
			standard = commandinfo.ForDialect(commandinfo.DialectStandardized)
		}
		negotiator = NewNegotiator(legacy, standard, WithNegotiatorLogger(logger))
	}

	transport := o.transport
	if transport == nil {
		clientCfg, err := NewClientConfig(cfg)
		if err != nil {
			return nil, err
		}
		clientCfg.Logger = o.logger
		if o.userAgent != "" {
			clientCfg.UserAgent = o.userAgent
		}
		transport = network.NewTransport(clientCfg)
	}

	return &Executor{
		baseURL:    baseURL,
		transport:  transport,
		negotiator: negotiator,
		logger:     logger,
	}, nil
}

// NewClientConfig maps the remote server settings onto the HTTP client configuration.
func NewClientConfig(cfg config.RemoteConfig) (*network.ClientConfig, error) {
	clientCfg := network.NewDefaultClientConfig()
	if cfg.Timeout > 0 {
		clientCfg.RequestTimeout = cfg.Timeout
	}
	if cfg.MaxConnsPerHost > 0 {
		clientCfg.MaxConnsPerHost = cfg.MaxConnsPerHost
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		clientCfg.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout > 0 {
		clientCfg.IdleConnTimeout = cfg.IdleConnTimeout
	}
	clientCfg.DisableKeepAlives = !cfg.KeepAlive
	clientCfg.IgnoreTLSErrors = cfg.IgnoreTLSErrors
	clientCfg.ForceHTTP2 = cfg.ForceHTTP2
	clientCfg.DisableCompression = cfg.DisableCompression

	if cfg.CAFile != "" {
		pool, err := security.LoadCertPool(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		clientCfg.TLSConfig = &tls.Config{RootCAs: pool, ClientSessionCache: tls.NewLRUClientSessionCache(64)}
	}

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("%w: proxy URL: %v", ErrInvalidArgument, err)
		}
		clientCfg.ProxyURL = proxyURL
	}
	return clientCfg, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: remote server URL is required", ErrInvalidArgument)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: remote server URL: %v", ErrInvalidArgument, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: remote server URL must be an absolute http(s) URL", ErrInvalidArgument)
	}
	return u, nil
}

// Execute sends cmd to the remote server and returns the translated result.
//
// Commands the active table does not know and error statuses reported by the
// server come back as a Result, not an error. Errors are reserved for
// requests that could not be built and exchanges that failed outright.
func (e *Executor) Execute(ctx context.Context, cmd *schemas.Command) (*schemas.Result, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: command must not be nil", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	logger := e.logger.With(
		zap.String("call_id", uuid.NewString()),
		zap.String("command", cmd.Name()),
	)

	repo := e.negotiator.Repository()
	info, err := repo.CommandInfo(cmd.Name())
	if err != nil {
		if errors.Is(err, commandinfo.ErrUnknownCommand) {
			logger.Debug("Command not mapped in the active dialect", zap.Stringer("dialect", repo.Dialect()))
			return &schemas.Result{Status: schemas.StatusUnknownCommand, Value: err.Error()}, nil
		}
		return nil, fmt.Errorf("failed to resolve command %s: %w", cmd.Name(), err)
	}

	target, body, err := info.URL(e.baseURL, cmd)
	if err != nil {
		logger.Debug("Could not build request URL",
			zap.String("template", info.ResourcePath),
			zap.Strings("placeholders", info.Placeholders()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	req := &network.Request{Method: info.Method, URL: target}
	if info.HasBody() {
		payload, err := body.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		req.Body = payload
	}

	start := time.Now()
	raw, err := e.transport.Send(ctx, req)
	if err != nil {
		logger.Warn("Command failed in transport", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to execute %s: %w", cmd.Name(), err)
	}

	result, err := Translate(raw, repo.Dialect())
	if err != nil {
		logger.Warn("Could not translate response", zap.Int("http_status", raw.StatusCode), zap.Error(err))
		return nil, fmt.Errorf("failed to execute %s: %w", cmd.Name(), err)
	}

	if cmd.Name() == schemas.CommandNewSession {
		e.negotiator.Observe(cmd.Name(), result)
	}

	logger.Debug("Command executed",
		zap.String("method", req.Method),
		zap.String("path", target.Path),
		zap.Int("http_status", raw.StatusCode),
		zap.Stringer("status", result.Status),
		zap.Stringer("dialect", repo.Dialect()),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// Dialect returns the dialect used for the next command.
func (e *Executor) Dialect() commandinfo.Dialect {
	return e.negotiator.Dialect()
}

// Close releases the transport's connections. It is safe to call more than once.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.logger.Debug("Closing executor",
		zap.Stringer("dialect", e.negotiator.Dialect()),
		zap.Bool("dialect_switched", e.negotiator.Switched()))
	if err := e.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}
