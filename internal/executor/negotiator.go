// File: internal/executor/negotiator.go
package executor

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/courier/api/schemas"
	"github.com/xkilldash9x/courier/internal/commandinfo"
)

// SwitchHook is called once when the negotiator changes dialect.
type SwitchHook func(from, to commandinfo.Dialect)

// NegotiatorOption configures a Negotiator.
type NegotiatorOption func(*Negotiator)

// WithSwitchHook registers a hook invoked after the dialect switch.
func WithSwitchHook(hook SwitchHook) NegotiatorOption {
	return func(n *Negotiator) { n.onSwitch = hook }
}

// WithNegotiatorLogger sets the logger used to report the switch.
func WithNegotiatorLogger(logger *zap.Logger) NegotiatorOption {
	return func(n *Negotiator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// Negotiator tracks which command table is active. It starts on the legacy
// table and moves to the standardized one at most once, after the server
// answers session creation with a standardized payload.
type Negotiator struct {
	mu           sync.Mutex
	active       commandinfo.Repository
	standardized commandinfo.Repository
	switched     bool

	logger   *zap.Logger
	onSwitch SwitchHook
}

// NewNegotiator creates a negotiator starting on initial. When initial is
// already the standardized table no switch will ever happen.
func NewNegotiator(initial, standardized commandinfo.Repository, opts ...NegotiatorOption) *Negotiator {
	n := &Negotiator{
		active:       initial,
		standardized: standardized,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewDefaultNegotiator starts on the built-in legacy table and can switch to
// the built-in standardized table.
func NewDefaultNegotiator(opts ...NegotiatorOption) *Negotiator {
	return NewNegotiator(commandinfo.ForDialect(commandinfo.DialectLegacy), commandinfo.ForDialect(commandinfo.DialectStandardized), opts...)
}

// Repository returns the active command table.
func (n *Negotiator) Repository() commandinfo.Repository {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// Dialect returns the active dialect.
func (n *Negotiator) Dialect() commandinfo.Dialect {
	return n.Repository().Dialect()
}

// Switched reports whether the one-time switch has happened.
func (n *Negotiator) Switched() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.switched
}

// Observe inspects the result of a command and switches to the standardized
// table when it was a successful, standardized session creation. It returns
// true only for the call that performed the switch.
func (n *Negotiator) Observe(commandName string, result *schemas.Result) bool {
	if commandName != schemas.CommandNewSession || result == nil {
		return false
	}
	if !result.Status.IsSuccess() || !result.SpecificationCompliant {
		return false
	}

	n.mu.Lock()
	if n.switched || n.active.Dialect() == commandinfo.DialectStandardized {
		n.mu.Unlock()
		return false
	}
	from := n.active.Dialect()
	n.active = n.standardized
	n.switched = true
	hook := n.onSwitch
	n.mu.Unlock()

	n.logger.Info("Remote end speaks the standardized dialect; switching command table",
		zap.Stringer("from", from),
		zap.Stringer("to", commandinfo.DialectStandardized),
		zap.String("session_id", result.SessionID))
	if hook != nil {
		hook(from, commandinfo.DialectStandardized)
	}
	return true
}
