// File: internal/network/compression.go
package network

import (
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// acceptEncoding is advertised on every request unless the caller set one.
const acceptEncoding = "gzip, deflate, br"

var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} { return new(gzip.Reader) },
	}
	brotliReaderPool = sync.Pool{
		New: func() interface{} { return brotli.NewReader(nil) },
	}
)

// CompressionMiddleware advertises compressed encodings to the server and
// transparently decodes the response body, so callers always read plain bytes.
type CompressionMiddleware struct {
	next http.RoundTripper
}

// NewCompressionMiddleware wraps next. A nil next uses http.DefaultTransport.
func NewCompressionMiddleware(next http.RoundTripper) *CompressionMiddleware {
	if next == nil {
		next = http.DefaultTransport
	}
	return &CompressionMiddleware{next: next}
}

// RoundTrip implements http.RoundTripper.
func (m *CompressionMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := m.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := DecompressResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// CloseIdleConnections forwards to the wrapped transport so http.Client can
// drain the pool through the middleware.
func (m *CompressionMiddleware) CloseIdleConnections() {
	type idleCloser interface{ CloseIdleConnections() }
	if c, ok := m.next.(idleCloser); ok {
		c.CloseIdleConnections()
	}
}

// DecompressResponse replaces resp.Body with a decoding reader according to
// Content-Encoding. Unknown encodings are left untouched.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil || resp.Body == http.NoBody {
		return nil
	}
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))

	var decoded io.ReadCloser
	switch encoding {
	case "gzip", "x-gzip":
		zr := gzipReaderPool.Get().(*gzip.Reader)
		if err := zr.Reset(resp.Body); err != nil {
			gzipReaderPool.Put(zr)
			if err == io.EOF {
				// Empty body with a gzip header set.
				return nil
			}
			return fmt.Errorf("failed to initialize gzip reader: %w", err)
		}
		decoded = &pooledReader{
			Reader: zr,
			source: resp.Body,
			release: func() {
				zr.Close()
				gzipReaderPool.Put(zr)
			},
		}
	case "br":
		br := brotliReaderPool.Get().(*brotli.Reader)
		if err := br.Reset(resp.Body); err != nil {
			brotliReaderPool.Put(br)
			return fmt.Errorf("failed to initialize brotli reader: %w", err)
		}
		decoded = &pooledReader{
			Reader:  br,
			source:  resp.Body,
			release: func() { brotliReaderPool.Put(br) },
		}
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to initialize deflate reader: %w", err)
		}
		decoded = &pooledReader{Reader: zr, source: resp.Body, release: func() { zr.Close() }}
	default:
		return nil
	}

	resp.Body = decoded
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// pooledReader returns its decoder to the pool and closes the underlying body on Close.
type pooledReader struct {
	io.Reader
	source  io.ReadCloser
	release func()
	once    sync.Once
}

func (p *pooledReader) Close() error {
	var err error
	p.once.Do(func() {
		p.release()
		err = p.source.Close()
	})
	return err
}
