// File: internal/commandinfo/commandinfo.go
package commandinfo

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/xkilldash9x/courier/api/schemas"
)

// SessionIDPlaceholder is the template placeholder filled from the command's
// session id rather than from its parameters.
const SessionIDPlaceholder = "sessionId"

var (
	// ErrUnknownCommand is returned when a command name has no mapping in a table.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnresolvedPlaceholder is returned when a URI template references a
	// value the command does not carry.
	ErrUnresolvedPlaceholder = errors.New("unresolved URI placeholder")
)

// CommandInfo is the HTTP method and resource template for one command.
type CommandInfo struct {
	Method       string
	ResourcePath string
}

func get(path string) CommandInfo  { return CommandInfo{Method: http.MethodGet, ResourcePath: path} }
func post(path string) CommandInfo { return CommandInfo{Method: http.MethodPost, ResourcePath: path} }
func del(path string) CommandInfo  { return CommandInfo{Method: http.MethodDelete, ResourcePath: path} }

// HasBody reports whether requests for this command carry a JSON payload.
func (ci CommandInfo) HasBody() bool { return ci.Method == http.MethodPost }

// Placeholders returns the placeholder names in the resource template, in order.
func (ci CommandInfo) Placeholders() []string {
	var names []string
	for _, part := range strings.Split(ci.ResourcePath, "/") {
		if name, ok := placeholderName(part); ok {
			names = append(names, name)
		}
	}
	return names
}

// URL expands the resource template for cmd and resolves it against base.
// It also returns the parameters that remain for the request body once the
// values consumed by the template are removed. The command is not modified.
func (ci CommandInfo) URL(base *url.URL, cmd *schemas.Command) (*url.URL, schemas.Parameters, error) {
	if base == nil {
		return nil, schemas.Parameters{}, errors.New("base URL is required")
	}
	params := cmd.Parameters()

	parts := strings.Split(strings.Trim(ci.ResourcePath, "/"), "/")
	decoded := make([]string, len(parts))
	escaped := make([]string, len(parts))
	var consumed []string

	for i, part := range parts {
		name, ok := placeholderName(part)
		if !ok {
			decoded[i], escaped[i] = part, part
			continue
		}
		value, fromParams, err := resolve(name, cmd, params)
		if err != nil {
			return nil, schemas.Parameters{}, err
		}
		if fromParams {
			consumed = append(consumed, name)
		}
		decoded[i] = value
		escaped[i] = url.PathEscape(value)
	}

	full := *base
	full.RawQuery = ""
	full.Fragment = ""
	full.Path = strings.TrimRight(base.Path, "/") + "/" + strings.Join(decoded, "/")
	full.RawPath = strings.TrimRight(base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")

	return &full, params.Without(consumed...), nil
}

func resolve(name string, cmd *schemas.Command, params schemas.Parameters) (string, bool, error) {
	if name == SessionIDPlaceholder && cmd.SessionID() != "" {
		return cmd.SessionID(), false, nil
	}
	raw, ok := params.Get(name)
	if !ok || raw == nil {
		return "", false, fmt.Errorf("%w: {%s} for command %q", ErrUnresolvedPlaceholder, name, cmd.Name())
	}
	value := fmt.Sprint(raw)
	if value == "" {
		return "", false, fmt.Errorf("%w: {%s} is empty for command %q", ErrUnresolvedPlaceholder, name, cmd.Name())
	}
	return value, true, nil
}

func placeholderName(part string) (string, bool) {
	if len(part) > 2 && strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
		return part[1 : len(part)-1], true
	}
	return "", false
}
