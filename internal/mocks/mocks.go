// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/courier/internal/config"
	"github.com/xkilldash9x/courier/internal/diagnostics"
	"github.com/xkilldash9x/courier/internal/network"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Remote() config.RemoteConfig {
	args := m.Called()
	return args.Get(0).(config.RemoteConfig)
}

func (m *MockConfig) Probe() config.ProbeConfig {
	args := m.Called()
	return args.Get(0).(config.ProbeConfig)
}

// --- Setters ---

func (m *MockConfig) SetRemoteURL(u string) {
	m.Called(u)
}

func (m *MockConfig) SetRemoteTimeout(d time.Duration) {
	m.Called(d)
}

func (m *MockConfig) SetRemoteKeepAlive(b bool) {
	m.Called(b)
}

// -- Transport Mock --

// MockTransport mocks network.Transport.
type MockTransport struct {
	mock.Mock
}

var _ network.Transport = (*MockTransport)(nil)

// Send provides a mock function for one HTTP exchange.
func (m *MockTransport) Send(ctx context.Context, req *network.Request) (*network.RawResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	args := m.Called(ctx, req)
	var resp *network.RawResponse
	if r := args.Get(0); r != nil {
		resp = r.(*network.RawResponse)
	}
	return resp, args.Error(1)
}

func (m *MockTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}

// -- Diagnostics Mock --

// MockConnectionCounter mocks diagnostics.ConnectionCounter.
type MockConnectionCounter struct {
	mock.Mock
}

var _ diagnostics.ConnectionCounter = (*MockConnectionCounter)(nil)

func (m *MockConnectionCounter) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
