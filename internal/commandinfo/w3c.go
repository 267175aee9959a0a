// File: internal/commandinfo/w3c.go
package commandinfo

import "github.com/xkilldash9x/courier/api/schemas"

// NewStandardizedRepository returns the W3C WebDriver command table.
func NewStandardizedRepository() Repository {
	return newTable(DialectStandardized, map[string]CommandInfo{
		schemas.CommandStatus:     get("/status"),
		schemas.CommandNewSession: post("/session"),
		schemas.CommandQuit:       del("/session/{sessionId}"),

		schemas.CommandGet:           post("/session/{sessionId}/url"),
		schemas.CommandGetCurrentURL: get("/session/{sessionId}/url"),
		schemas.CommandGoBack:        post("/session/{sessionId}/back"),
		schemas.CommandGoForward:     post("/session/{sessionId}/forward"),
		schemas.CommandRefresh:       post("/session/{sessionId}/refresh"),
		schemas.CommandGetTitle:      get("/session/{sessionId}/title"),
		schemas.CommandGetPageSource: get("/session/{sessionId}/source"),
		schemas.CommandScreenshot:    get("/session/{sessionId}/screenshot"),

		schemas.CommandFindElement:                  post("/session/{sessionId}/element"),
		schemas.CommandFindElements:                 post("/session/{sessionId}/elements"),
		schemas.CommandGetActiveElement:             get("/session/{sessionId}/element/active"),
		schemas.CommandFindChildElement:             post("/session/{sessionId}/element/{id}/element"),
		schemas.CommandFindChildElements:            post("/session/{sessionId}/element/{id}/elements"),
		schemas.CommandClickElement:                 post("/session/{sessionId}/element/{id}/click"),
		schemas.CommandClearElement:                 post("/session/{sessionId}/element/{id}/clear"),
		schemas.CommandSendKeysToElement:            post("/session/{sessionId}/element/{id}/value"),
		schemas.CommandGetElementText:               get("/session/{sessionId}/element/{id}/text"),
		schemas.CommandGetElementTagName:            get("/session/{sessionId}/element/{id}/name"),
		schemas.CommandIsElementSelected:            get("/session/{sessionId}/element/{id}/selected"),
		schemas.CommandIsElementEnabled:             get("/session/{sessionId}/element/{id}/enabled"),
		schemas.CommandIsElementDisplayed:           get("/session/{sessionId}/element/{id}/displayed"),
		schemas.CommandGetElementRect:               get("/session/{sessionId}/element/{id}/rect"),
		schemas.CommandGetElementAttribute:          get("/session/{sessionId}/element/{id}/attribute/{name}"),
		schemas.CommandGetElementProperty:           get("/session/{sessionId}/element/{id}/property/{name}"),
		schemas.CommandGetElementValueOfCSSProperty: get("/session/{sessionId}/element/{id}/css/{name}"),
		schemas.CommandElementScreenshot:            get("/session/{sessionId}/element/{id}/screenshot"),

		schemas.CommandClose:                  del("/session/{sessionId}/window"),
		schemas.CommandGetCurrentWindowHandle: get("/session/{sessionId}/window"),
		schemas.CommandGetWindowHandles:       get("/session/{sessionId}/window/handles"),
		schemas.CommandSwitchToWindow:         post("/session/{sessionId}/window"),
		schemas.CommandSwitchToFrame:          post("/session/{sessionId}/frame"),
		schemas.CommandSwitchToParentFrame:    post("/session/{sessionId}/frame/parent"),
		schemas.CommandGetWindowRect:          get("/session/{sessionId}/window/rect"),
		schemas.CommandSetWindowRect:          post("/session/{sessionId}/window/rect"),
		schemas.CommandGetWindowSize:          get("/session/{sessionId}/window/rect"),
		schemas.CommandSetWindowSize:          post("/session/{sessionId}/window/rect"),
		schemas.CommandGetWindowPosition:      get("/session/{sessionId}/window/rect"),
		schemas.CommandSetWindowPosition:      post("/session/{sessionId}/window/rect"),
		schemas.CommandMaximizeWindow:         post("/session/{sessionId}/window/maximize"),
		schemas.CommandMinimizeWindow:         post("/session/{sessionId}/window/minimize"),
		schemas.CommandFullScreenWindow:       post("/session/{sessionId}/window/fullscreen"),

		schemas.CommandGetAllCookies:    get("/session/{sessionId}/cookie"),
		schemas.CommandGetCookie:        get("/session/{sessionId}/cookie/{name}"),
		schemas.CommandAddCookie:        post("/session/{sessionId}/cookie"),
		schemas.CommandDeleteAllCookies: del("/session/{sessionId}/cookie"),
		schemas.CommandDeleteCookie:     del("/session/{sessionId}/cookie/{name}"),

		schemas.CommandAcceptAlert:   post("/session/{sessionId}/alert/accept"),
		schemas.CommandDismissAlert:  post("/session/{sessionId}/alert/dismiss"),
		schemas.CommandGetAlertText:  get("/session/{sessionId}/alert/text"),
		schemas.CommandSetAlertValue: post("/session/{sessionId}/alert/text"),

		schemas.CommandExecuteScript:      post("/session/{sessionId}/execute/sync"),
		schemas.CommandExecuteAsyncScript: post("/session/{sessionId}/execute/async"),
		schemas.CommandGetTimeouts:        get("/session/{sessionId}/timeouts"),
		schemas.CommandSetTimeouts:        post("/session/{sessionId}/timeouts"),

		schemas.CommandActions:        post("/session/{sessionId}/actions"),
		schemas.CommandReleaseActions: del("/session/{sessionId}/actions"),
	})
}
