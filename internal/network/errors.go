// File: internal/network/errors.go
package network

import (
	"errors"
	"fmt"
	"net/url"
)

// Sentinel errors. Every *TransportError matches exactly one of
// ErrTransportTimeout or ErrTransport through errors.Is.
var (
	ErrTransportTimeout = errors.New("remote server did not respond in time")
	ErrTransport        = errors.New("remote server request failed")
	ErrTransportClosed  = errors.New("transport is closed")
)

// TransportErrorKind classifies a transport failure.
type TransportErrorKind int

const (
	// KindFailure covers connection refusals, DNS errors and resets.
	KindFailure TransportErrorKind = iota
	// KindTimeout is a client side timeout or an HTTP 408 from the server.
	KindTimeout
	// KindNoContent means the server answered without a body or content type.
	KindNoContent
)

// TransportError describes a failed exchange with the remote server.
type TransportError struct {
	Kind TransportErrorKind
	// URL is the request URL with any credentials removed.
	URL string
	// Timeout is the configured request timeout, reported for KindTimeout.
	Timeout float64
	// StatusCode is set when the server produced a status line.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindTimeout:
		if e.StatusCode != 0 {
			return fmt.Sprintf("HTTP request to the remote server at %s timed out (status %d, timeout %g seconds)", e.URL, e.StatusCode, e.Timeout)
		}
		return fmt.Sprintf("HTTP request to the remote server at %s timed out after %g seconds", e.URL, e.Timeout)
	case KindNoContent:
		return fmt.Sprintf("no content received from the remote server at %s (status %d)", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("HTTP request to the remote server at %s failed: %v", e.URL, e.Err)
		}
		return fmt.Sprintf("HTTP request to the remote server at %s failed", e.URL)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTransportTimeout:
		return e.Kind == KindTimeout
	case ErrTransport:
		return e.Kind != KindTimeout
	}
	return false
}

// redact removes the userinfo from u before it is printed.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.User = nil
	return clean.String()
}
