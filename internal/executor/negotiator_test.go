package executor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/courier/api/schemas"
	"github.com/xkilldash9x/courier/internal/commandinfo"
)

func standardizedSession() *schemas.Result {
	return &schemas.Result{
		Status:                 schemas.StatusSuccess,
		SessionID:              "abc",
		SpecificationCompliant: true,
	}
}

func TestNegotiator_StartsOnLegacy(t *testing.T) {
	n := NewDefaultNegotiator()
	assert.Equal(t, commandinfo.DialectLegacy, n.Dialect())
	assert.False(t, n.Switched())
}

func TestNegotiator_SwitchesOnce(t *testing.T) {
	var calls []commandinfo.Dialect
	n := NewDefaultNegotiator(WithSwitchHook(func(from, to commandinfo.Dialect) {
		assert.Equal(t, commandinfo.DialectLegacy, from)
		calls = append(calls, to)
	}))

	assert.True(t, n.Observe(schemas.CommandNewSession, standardizedSession()))
	assert.Equal(t, commandinfo.DialectStandardized, n.Dialect())
	assert.True(t, n.Switched())

	assert.False(t, n.Observe(schemas.CommandNewSession, standardizedSession()), "second session must not switch again")
	assert.Equal(t, []commandinfo.Dialect{commandinfo.DialectStandardized}, calls)
}

func TestNegotiator_IgnoresNonQualifyingResults(t *testing.T) {
	tests := []struct {
		name    string
		command string
		result  *schemas.Result
	}{
		{"other command", schemas.CommandGetTitle, standardizedSession()},
		{"legacy payload", schemas.CommandNewSession, &schemas.Result{Status: schemas.StatusSuccess, SessionID: "abc"}},
		{"failed session", schemas.CommandNewSession, &schemas.Result{Status: schemas.StatusSessionNotCreated, SpecificationCompliant: true}},
		{"nil result", schemas.CommandNewSession, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewDefaultNegotiator()
			assert.False(t, n.Observe(tt.command, tt.result))
			assert.Equal(t, commandinfo.DialectLegacy, n.Dialect())
		})
	}
}

func TestNegotiator_InitialStandardizedNeverSwitches(t *testing.T) {
	hookCalled := false
	std := commandinfo.NewStandardizedRepository()
	n := NewNegotiator(std, std, WithSwitchHook(func(_, _ commandinfo.Dialect) { hookCalled = true }))

	assert.False(t, n.Observe(schemas.CommandNewSession, standardizedSession()))
	assert.False(t, n.Switched())
	assert.False(t, hookCalled)
	assert.Equal(t, commandinfo.DialectStandardized, n.Dialect())
}

func TestNegotiator_LogsSwitch(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewDefaultNegotiator(WithNegotiatorLogger(zap.New(core)))

	require.True(t, n.Observe(schemas.CommandNewSession, standardizedSession()))

	entries := logs.FilterField(zap.String("session_id", "abc")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "standardized", entries[0].ContextMap()["to"])
}

func TestNegotiator_ConcurrentObserve(t *testing.T) {
	n := NewDefaultNegotiator()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		switches int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n.Observe(schemas.CommandNewSession, standardizedSession()) {
				mu.Lock()
				switches++
				mu.Unlock()
			}
			_ = n.Repository()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, switches)
	assert.Equal(t, commandinfo.DialectStandardized, n.Dialect())
}
