// File: internal/commandinfo/repository.go
package commandinfo

import (
	"fmt"
	"sort"
)

// Dialect identifies the wire protocol a server speaks.
type Dialect int

const (
	// DialectLegacy is the JSON wire protocol, which reports errors through
	// HTTP status codes and a numeric "status" member.
	DialectLegacy Dialect = iota
	// DialectStandardized is the W3C WebDriver protocol, whose JSON envelope
	// carries its own error discriminator.
	DialectStandardized
)

// String implements fmt.Stringer.
func (d Dialect) String() string {
	switch d {
	case DialectLegacy:
		return "legacy"
	case DialectStandardized:
		return "standardized"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Repository resolves command names to their HTTP mapping for one dialect.
type Repository interface {
	Dialect() Dialect
	CommandInfo(name string) (CommandInfo, error)
	Names() []string
}

// table is an immutable Repository populated at construction.
type table struct {
	dialect  Dialect
	commands map[string]CommandInfo
}

func newTable(dialect Dialect, commands map[string]CommandInfo) *table {
	copied := make(map[string]CommandInfo, len(commands))
	for name, info := range commands {
		copied[name] = info
	}
	return &table{dialect: dialect, commands: copied}
}

func (t *table) Dialect() Dialect { return t.dialect }

func (t *table) CommandInfo(name string) (CommandInfo, error) {
	info, ok := t.commands[name]
	if !ok {
		return CommandInfo{}, fmt.Errorf("%w: %q is not mapped in the %s dialect", ErrUnknownCommand, name, t.dialect)
	}
	return info, nil
}

func (t *table) Names() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForDialect returns a freshly built repository for the given dialect.
func ForDialect(d Dialect) Repository {
	if d == DialectStandardized {
		return NewStandardizedRepository()
	}
	return NewLegacyRepository()
}

// Extend returns a copy of base with extra commands added. Entries in extra
// override base mappings with the same name. It is used by drivers that
// expose vendor specific endpoints next to the standard table.
func Extend(base Repository, extra map[string]CommandInfo) Repository {
	merged := make(map[string]CommandInfo, len(base.Names())+len(extra))
	for _, name := range base.Names() {
		info, _ := base.CommandInfo(name)
		merged[name] = info
	}
	for name, info := range extra {
		merged[name] = info
	}
	return newTable(base.Dialect(), merged)
}

// NewCommandInfo creates a mapping for use with Extend.
func NewCommandInfo(method, resourcePath string) CommandInfo {
	return CommandInfo{Method: method, ResourcePath: resourcePath}
}
