// File: api/schemas/command.go
package schemas

import (
	"bytes"
	"fmt"
	"sort"

	json "github.com/json-iterator/go"
)

// Command names understood by the command repositories. The values match the
// names used by the WebDriver language bindings so commands can be logged and
// compared across clients.
const (
	CommandStatus                 = "status"
	CommandNewSession             = "newSession"
	CommandGetSessionList         = "getSessionList"
	CommandGetSessionCapabilities = "getSessionCapabilities"
	CommandQuit                   = "quit"

	CommandGet           = "get"
	CommandGetCurrentURL = "getCurrentUrl"
	CommandGoBack        = "goBack"
	CommandGoForward     = "goForward"
	CommandRefresh       = "refresh"
	CommandGetTitle      = "getTitle"
	CommandGetPageSource = "getPageSource"
	CommandScreenshot    = "screenshot"

	CommandFindElement                  = "findElement"
	CommandFindElements                 = "findElements"
	CommandFindChildElement             = "findChildElement"
	CommandFindChildElements            = "findChildElements"
	CommandGetActiveElement             = "getActiveElement"
	CommandDescribeElement              = "describeElement"
	CommandClickElement                 = "clickElement"
	CommandClearElement                 = "clearElement"
	CommandSubmitElement                = "submitElement"
	CommandSendKeysToElement            = "sendKeysToElement"
	CommandGetElementText               = "getElementText"
	CommandGetElementTagName            = "getElementTagName"
	CommandIsElementSelected            = "isElementSelected"
	CommandIsElementEnabled             = "isElementEnabled"
	CommandIsElementDisplayed           = "isElementDisplayed"
	CommandGetElementLocation           = "getElementLocation"
	CommandGetElementLocationInView     = "getElementLocationOnceScrolledIntoView"
	CommandGetElementSize               = "getElementSize"
	CommandGetElementRect               = "getElementRect"
	CommandGetElementAttribute          = "getElementAttribute"
	CommandGetElementProperty           = "getElementProperty"
	CommandGetElementValueOfCSSProperty = "getElementValueOfCssProperty"
	CommandElementEquals                = "elementEquals"
	CommandElementScreenshot            = "elementScreenshot"

	CommandClose                  = "close"
	CommandGetCurrentWindowHandle = "getCurrentWindowHandle"
	CommandGetWindowHandles       = "getWindowHandles"
	CommandSwitchToWindow         = "switchToWindow"
	CommandSwitchToFrame          = "switchToFrame"
	CommandSwitchToParentFrame    = "switchToParentFrame"
	CommandGetWindowSize          = "getWindowSize"
	CommandSetWindowSize          = "setWindowSize"
	CommandGetWindowPosition      = "getWindowPosition"
	CommandSetWindowPosition      = "setWindowPosition"
	CommandGetWindowRect          = "getWindowRect"
	CommandSetWindowRect          = "setWindowRect"
	CommandMaximizeWindow         = "maximizeWindow"
	CommandMinimizeWindow         = "minimizeWindow"
	CommandFullScreenWindow       = "fullScreenWindow"

	CommandGetAllCookies    = "getCookies"
	CommandGetCookie        = "getCookie"
	CommandAddCookie        = "addCookie"
	CommandDeleteCookie     = "deleteCookie"
	CommandDeleteAllCookies = "deleteAllCookies"

	CommandAcceptAlert   = "acceptAlert"
	CommandDismissAlert  = "dismissAlert"
	CommandGetAlertText  = "getAlertText"
	CommandSetAlertValue = "setAlertValue"

	CommandExecuteScript      = "executeScript"
	CommandExecuteAsyncScript = "executeAsyncScript"

	CommandGetTimeouts           = "getTimeouts"
	CommandSetTimeouts           = "setTimeouts"
	CommandImplicitlyWait        = "implicitlyWait"
	CommandSetAsyncScriptTimeout = "setScriptTimeout"

	CommandActions                 = "actions"
	CommandReleaseActions          = "releaseActions"
	CommandMouseClick              = "mouseClick"
	CommandMouseDoubleClick        = "mouseDoubleClick"
	CommandMouseDown               = "mouseDown"
	CommandMouseUp                 = "mouseUp"
	CommandMouseMoveTo             = "mouseMoveTo"
	CommandSendKeysToActiveElement = "sendKeysToActiveElement"

	CommandGetOrientation       = "getOrientation"
	CommandSetOrientation       = "setOrientation"
	CommandGetLog               = "getLog"
	CommandGetAvailableLogTypes = "getAvailableLogTypes"
	CommandUploadFile           = "uploadFile"
)

// Param is a single named command parameter.
type Param struct {
	Name  string
	Value interface{}
}

// Parameters is an insertion-ordered set of named values. The zero value is
// an empty set ready for use.
type Parameters struct {
	names  []string
	values map[string]interface{}
}

// NewParameters builds a parameter set from the given params. A later param
// with the same name replaces the value of an earlier one but keeps its
// original position.
func NewParameters(params ...Param) Parameters {
	var p Parameters
	for _, param := range params {
		p.set(param.Name, param.Value)
	}
	return p
}

// ParametersFromMap builds a parameter set from a map. Map iteration order is
// random, so names are inserted in sorted order to keep the encoding stable.
func ParametersFromMap(m map[string]interface{}) Parameters {
	var p Parameters
	for _, name := range sortedKeys(m) {
		p.set(name, m[name])
	}
	return p
}

func (p *Parameters) set(name string, value interface{}) {
	if p.values == nil {
		p.values = make(map[string]interface{})
	}
	if _, exists := p.values[name]; !exists {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

// Len reports the number of parameters.
func (p Parameters) Len() int { return len(p.names) }

// Get returns the value stored under name.
func (p Parameters) Get(name string) (interface{}, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Names returns the parameter names in insertion order.
func (p Parameters) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Without returns a copy of the set with the named parameters removed.
func (p Parameters) Without(names ...string) Parameters {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var out Parameters
	for _, n := range p.names {
		if _, skip := drop[n]; skip {
			continue
		}
		out.set(n, p.values[n])
	}
	return out
}

// MarshalJSON encodes the parameters as a JSON object, keeping insertion order.
func (p Parameters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.values[name])
		if err != nil {
			return nil, fmt.Errorf("failed to encode parameter %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Command is an immutable description of one remote operation.
type Command struct {
	name       string
	sessionID  string
	parameters Parameters
}

// NewCommand creates a command. The parameter set is copied so later changes
// made by the caller cannot leak into the command.
func NewCommand(sessionID, name string, params Parameters) *Command {
	return &Command{
		name:       name,
		sessionID:  sessionID,
		parameters: params.Without(),
	}
}

// Name returns the command name.
func (c *Command) Name() string { return c.name }

// SessionID returns the session the command targets, or "" for commands
// that run outside a session (newSession, status).
func (c *Command) SessionID() string { return c.sessionID }

// Parameters returns a copy of the command parameters.
func (c *Command) Parameters() Parameters { return c.parameters.Without() }

// ParametersJSON serializes the command parameters as a JSON object.
func (c *Command) ParametersJSON() ([]byte, error) {
	return c.parameters.MarshalJSON()
}

// String implements fmt.Stringer for logging.
func (c *Command) String() string {
	if c.sessionID == "" {
		return c.name
	}
	return fmt.Sprintf("%s[session=%s]", c.name, c.sessionID)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
