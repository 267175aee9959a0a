// File: internal/executor/errors.go
package executor

import "errors"

var (
	// ErrInvalidArgument reports a command that cannot be turned into a request:
	// a nil command, an unresolved URL placeholder or unencodable parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidResponse reports a response body that claims to be JSON but is not.
	ErrInvalidResponse = errors.New("invalid response from remote server")
)
