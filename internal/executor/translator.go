// File: internal/executor/translator.go
package executor

import (
	"fmt"
	"math"
	"net/http"
	"runtime"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/courier/api/schemas"
	"github.com/xkilldash9x/courier/internal/commandinfo"
	"github.com/xkilldash9x/courier/internal/network"
)

const jsonMimeType = "application/json"

// nativeLineEnding is what string results are normalized to.
var nativeLineEnding = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// Translate converts a raw server response into a Result.
//
// JSON bodies are decoded and unwrapped from either wire envelope. Under the
// legacy dialect the HTTP status is also consulted, since that dialect reports
// errors through it; the standardized dialect carries its own error member.
// Only malformed JSON is reported as an error.
func Translate(raw *network.RawResponse, dialect commandinfo.Dialect) (*schemas.Result, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}

	result := &schemas.Result{}
	if isJSON(raw.ContentType) {
		parsed, err := parseEnvelope(raw.Body)
		if err != nil {
			return nil, err
		}
		result = parsed
	} else {
		result.Value = raw.Body
	}

	if dialect == commandinfo.DialectLegacy {
		classifyLegacyStatus(result, raw.StatusCode)
	}

	if s, ok := result.Value.(string); ok {
		result.Value = NormalizeLineEndings(s)
	}
	return result, nil
}

// NormalizeLineEndings rewrites CRLF and bare LF sequences to the platform's
// native line ending. Applying it twice yields the same string.
func NormalizeLineEndings(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if nativeLineEnding == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", nativeLineEnding)
}

func isJSON(contentType string) bool {
	return len(contentType) >= len(jsonMimeType) &&
		strings.EqualFold(contentType[:len(jsonMimeType)], jsonMimeType)
}

// parseEnvelope decodes body and unwraps the response envelope.
//
// Legacy servers answer {"sessionId":..., "status":N, "value":...}. Standardized
// servers omit "status" and either wrap new session data as
// {"value":{"sessionId":..., "capabilities":{...}}} or report failures as
// {"value":{"error":"...", "message":"..."}}.
func parseEnvelope(body string) (*schemas.Result, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty JSON body", ErrInvalidResponse)
	}
	var decoded interface{}
	if err := json.UnmarshalFromString(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON body: %v", ErrInvalidResponse, err)
	}

	result := &schemas.Result{}
	envelope, ok := decoded.(map[string]interface{})
	if !ok {
		result.Value = decoded
		return result, nil
	}

	if sid, ok := envelope["sessionId"]; ok && sid != nil {
		result.SessionID = fmt.Sprint(sid)
	}

	if value, ok := envelope["value"]; ok {
		result.Value = value
	} else if caps, ok := envelope["capabilities"]; ok {
		result.Value = caps
	} else {
		result.Value = envelope
	}

	if status, ok := envelope["status"]; ok {
		code, err := statusCode(status)
		if err != nil {
			return nil, err
		}
		result.Status = code
		return result, nil
	}

	result.SpecificationCompliant = true
	inner, ok := result.Value.(map[string]interface{})
	if !ok {
		return result, nil
	}
	if sid, ok := inner["sessionId"]; ok {
		if sid != nil {
			result.SessionID = fmt.Sprint(sid)
		}
		if caps, ok := inner["capabilities"]; ok {
			result.Value = caps
		} else {
			result.Value = inner["value"]
		}
	} else if code, ok := inner["error"]; ok {
		result.Status = schemas.StatusFromW3CError(fmt.Sprint(code))
	}
	return result, nil
}

func statusCode(raw interface{}) (schemas.Status, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: non-integer status %v", ErrInvalidResponse, v)
		}
		return schemas.Status(int(v)), nil
	default:
		return 0, fmt.Errorf("%w: status member has type %T", ErrInvalidResponse, raw)
	}
}

// classifyLegacyStatus folds error-range HTTP status codes into the result.
// A 5xx other than 501 keeps a more specific failure status reported by the
// body and only overrides a success status.
func classifyLegacyStatus(result *schemas.Result, httpStatus int) {
	switch {
	case httpStatus >= http.StatusOK && httpStatus < http.StatusBadRequest:
		return
	case httpStatus >= http.StatusBadRequest && httpStatus < http.StatusInternalServerError:
		result.Status = schemas.StatusUnhandledError
	case httpStatus == http.StatusNotImplemented:
		result.Status = schemas.StatusUnknownCommand
	case httpStatus >= http.StatusInternalServerError:
		if result.Status.IsSuccess() {
			result.Status = schemas.StatusUnhandledError
		}
	default:
		result.Status = schemas.StatusUnhandledError
	}
}
