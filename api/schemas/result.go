// File: api/schemas/result.go
package schemas

import (
	"fmt"
	"strings"
)

// Status is the outcome of a remote command. The numeric values are the
// status codes of the legacy JSON wire protocol; standardized error strings
// are folded onto the same table by StatusFromW3CError.
type Status int

const (
	StatusSuccess                        Status = 0
	StatusNoSuchDriver                   Status = 6
	StatusNoSuchElement                  Status = 7
	StatusNoSuchFrame                    Status = 8
	StatusUnknownCommand                 Status = 9
	StatusStaleElementReference          Status = 10
	StatusElementNotVisible              Status = 11
	StatusInvalidElementState            Status = 12
	StatusUnhandledError                 Status = 13
	StatusElementNotSelectable           Status = 15
	StatusJavaScriptError                Status = 17
	StatusXPathLookupError               Status = 19
	StatusTimeout                        Status = 21
	StatusNoSuchWindow                   Status = 23
	StatusInvalidCookieDomain            Status = 24
	StatusUnableToSetCookie              Status = 25
	StatusUnexpectedAlertOpen            Status = 26
	StatusNoAlertPresent                 Status = 27
	StatusAsyncScriptTimeout             Status = 28
	StatusInvalidElementCoordinates      Status = 29
	StatusInvalidSelector                Status = 32
	StatusSessionNotCreated              Status = 33
	StatusMoveTargetOutOfBounds          Status = 34
	StatusInvalidXPathSelector           Status = 51
	StatusInvalidXPathSelectorReturnType Status = 52
	StatusInsecureCertificate            Status = 59
	StatusElementNotInteractable         Status = 60
	StatusInvalidArgument                Status = 61
	StatusNoSuchCookie                   Status = 62
	StatusUnableToCaptureScreen          Status = 63
	StatusElementClickIntercepted        Status = 64
)

var statusNames = map[Status]string{
	StatusSuccess:                        "success",
	StatusNoSuchDriver:                   "no such driver",
	StatusNoSuchElement:                  "no such element",
	StatusNoSuchFrame:                    "no such frame",
	StatusUnknownCommand:                 "unknown command",
	StatusStaleElementReference:          "stale element reference",
	StatusElementNotVisible:              "element not visible",
	StatusInvalidElementState:            "invalid element state",
	StatusUnhandledError:                 "unhandled error",
	StatusElementNotSelectable:           "element not selectable",
	StatusJavaScriptError:                "javascript error",
	StatusXPathLookupError:               "xpath lookup error",
	StatusTimeout:                        "timeout",
	StatusNoSuchWindow:                   "no such window",
	StatusInvalidCookieDomain:            "invalid cookie domain",
	StatusUnableToSetCookie:              "unable to set cookie",
	StatusUnexpectedAlertOpen:            "unexpected alert open",
	StatusNoAlertPresent:                 "no alert present",
	StatusAsyncScriptTimeout:             "async script timeout",
	StatusInvalidElementCoordinates:      "invalid element coordinates",
	StatusInvalidSelector:                "invalid selector",
	StatusSessionNotCreated:              "session not created",
	StatusMoveTargetOutOfBounds:          "move target out of bounds",
	StatusInvalidXPathSelector:           "invalid xpath selector",
	StatusInvalidXPathSelectorReturnType: "invalid xpath selector return type",
	StatusInsecureCertificate:            "insecure certificate",
	StatusElementNotInteractable:         "element not interactable",
	StatusInvalidArgument:                "invalid argument",
	StatusNoSuchCookie:                   "no such cookie",
	StatusUnableToCaptureScreen:          "unable to capture screen",
	StatusElementClickIntercepted:        "element click intercepted",
}

// String returns a readable name for the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// IsSuccess reports whether the status denotes a successful command.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// w3cErrors maps the error codes of the standardized protocol onto Status.
var w3cErrors = map[string]Status{
	"element click intercepted":   StatusElementClickIntercepted,
	"element not selectable":      StatusElementNotSelectable,
	"element not interactable":    StatusElementNotInteractable,
	"element not visible":         StatusElementNotVisible,
	"insecure certificate":        StatusInsecureCertificate,
	"invalid argument":            StatusInvalidArgument,
	"invalid cookie domain":       StatusInvalidCookieDomain,
	"invalid coordinates":         StatusInvalidElementCoordinates,
	"invalid element coordinates": StatusInvalidElementCoordinates,
	"invalid element state":       StatusInvalidElementState,
	"invalid selector":            StatusInvalidSelector,
	"invalid session id":          StatusNoSuchDriver,
	"javascript error":            StatusJavaScriptError,
	"move target out of bounds":   StatusMoveTargetOutOfBounds,
	"no such alert":               StatusNoAlertPresent,
	"no such cookie":              StatusNoSuchCookie,
	"no such element":             StatusNoSuchElement,
	"no such frame":               StatusNoSuchFrame,
	"no such window":              StatusNoSuchWindow,
	"script timeout":              StatusAsyncScriptTimeout,
	"session not created":         StatusSessionNotCreated,
	"stale element reference":     StatusStaleElementReference,
	"timeout":                     StatusTimeout,
	"unable to set cookie":        StatusUnableToSetCookie,
	"unable to capture screen":    StatusUnableToCaptureScreen,
	"unexpected alert open":       StatusUnexpectedAlertOpen,
	"unknown command":             StatusUnknownCommand,
	"unknown error":               StatusUnhandledError,
	"unknown method":              StatusUnknownCommand,
	"unsupported operation":       StatusUnhandledError,
}

// StatusFromW3CError converts a standardized error code into a Status.
// Unrecognized codes are reported as StatusUnhandledError.
func StatusFromW3CError(code string) Status {
	if s, ok := w3cErrors[strings.ToLower(strings.TrimSpace(code))]; ok {
		return s
	}
	return StatusUnhandledError
}

// Result is the structured outcome of executing a Command.
type Result struct {
	// Status is authoritative; the zero value is StatusSuccess.
	Status Status `json:"status"`
	// Value holds the decoded payload on success or the error details on failure.
	Value interface{} `json:"value"`
	// SessionID is set when the server reported one.
	SessionID string `json:"sessionId,omitempty"`
	// SpecificationCompliant is true when the payload used the standardized
	// envelope (no top level "status" member).
	SpecificationCompliant bool `json:"-"`
}

// ErrorMessage extracts the human readable message from a failed Result's
// value, if the server supplied one.
func (r *Result) ErrorMessage() string {
	if r == nil || r.Status.IsSuccess() {
		return ""
	}
	switch v := r.Value.(type) {
	case string:
		return v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// String implements fmt.Stringer for logging.
func (r *Result) String() string {
	if r == nil {
		return "<nil result>"
	}
	if msg := r.ErrorMessage(); msg != "" {
		return fmt.Sprintf("%s: %s", r.Status, msg)
	}
	return r.Status.String()
}
