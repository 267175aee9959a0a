// File: internal/commandinfo/legacy.go
package commandinfo

import "github.com/xkilldash9x/courier/api/schemas"

// NewLegacyRepository returns the JSON wire protocol command table.
func NewLegacyRepository() Repository {
	return newTable(DialectLegacy, map[string]CommandInfo{
		// Session lifecycle.
		schemas.CommandStatus:                 get("/status"),
		schemas.CommandNewSession:             post("/session"),
		schemas.CommandGetSessionList:         get("/sessions"),
		schemas.CommandGetSessionCapabilities: get("/session/{sessionId}"),
		schemas.CommandQuit:                   del("/session/{sessionId}"),

		// Navigation.
		schemas.CommandGet:           post("/session/{sessionId}/url"),
		schemas.CommandGetCurrentURL: get("/session/{sessionId}/url"),
		schemas.CommandGoBack:        post("/session/{sessionId}/back"),
		schemas.CommandGoForward:     post("/session/{sessionId}/forward"),
		schemas.CommandRefresh:       post("/session/{sessionId}/refresh"),
		schemas.CommandGetTitle:      get("/session/{sessionId}/title"),
		schemas.CommandGetPageSource: get("/session/{sessionId}/source"),
		schemas.CommandScreenshot:    get("/session/{sessionId}/screenshot"),

		// Elements.
		schemas.CommandFindElement:                  post("/session/{sessionId}/element"),
		schemas.CommandFindElements:                 post("/session/{sessionId}/elements"),
		schemas.CommandGetActiveElement:             post("/session/{sessionId}/element/active"),
		schemas.CommandFindChildElement:             post("/session/{sessionId}/element/{id}/element"),
		schemas.CommandFindChildElements:            post("/session/{sessionId}/element/{id}/elements"),
		schemas.CommandDescribeElement:              get("/session/{sessionId}/element/{id}"),
		schemas.CommandClickElement:                 post("/session/{sessionId}/element/{id}/click"),
		schemas.CommandClearElement:                 post("/session/{sessionId}/element/{id}/clear"),
		schemas.CommandSubmitElement:                post("/session/{sessionId}/element/{id}/submit"),
		schemas.CommandSendKeysToElement:            post("/session/{sessionId}/element/{id}/value"),
		schemas.CommandGetElementText:               get("/session/{sessionId}/element/{id}/text"),
		schemas.CommandGetElementTagName:            get("/session/{sessionId}/element/{id}/name"),
		schemas.CommandIsElementSelected:            get("/session/{sessionId}/element/{id}/selected"),
		schemas.CommandIsElementEnabled:             get("/session/{sessionId}/element/{id}/enabled"),
		schemas.CommandIsElementDisplayed:           get("/session/{sessionId}/element/{id}/displayed"),
		schemas.CommandGetElementLocation:           get("/session/{sessionId}/element/{id}/location"),
		schemas.CommandGetElementLocationInView:     get("/session/{sessionId}/element/{id}/location_in_view"),
		schemas.CommandGetElementSize:               get("/session/{sessionId}/element/{id}/size"),
		schemas.CommandGetElementAttribute:          get("/session/{sessionId}/element/{id}/attribute/{name}"),
		schemas.CommandGetElementProperty:           get("/session/{sessionId}/element/{id}/attribute/{name}"),
		schemas.CommandGetElementValueOfCSSProperty: get("/session/{sessionId}/element/{id}/css/{propertyName}"),
		schemas.CommandElementEquals:                get("/session/{sessionId}/element/{id}/equals/{other}"),

		// Windows and frames.
		schemas.CommandClose:                  del("/session/{sessionId}/window"),
		schemas.CommandGetCurrentWindowHandle: get("/session/{sessionId}/window_handle"),
		schemas.CommandGetWindowHandles:       get("/session/{sessionId}/window_handles"),
		schemas.CommandSwitchToWindow:         post("/session/{sessionId}/window"),
		schemas.CommandSwitchToFrame:          post("/session/{sessionId}/frame"),
		schemas.CommandSwitchToParentFrame:    post("/session/{sessionId}/frame/parent"),
		schemas.CommandGetWindowSize:          get("/session/{sessionId}/window/{windowHandle}/size"),
		schemas.CommandSetWindowSize:          post("/session/{sessionId}/window/{windowHandle}/size"),
		schemas.CommandGetWindowPosition:      get("/session/{sessionId}/window/{windowHandle}/position"),
		schemas.CommandSetWindowPosition:      post("/session/{sessionId}/window/{windowHandle}/position"),
		schemas.CommandMaximizeWindow:         post("/session/{sessionId}/window/{windowHandle}/maximize"),

		// Cookies.
		schemas.CommandGetAllCookies:    get("/session/{sessionId}/cookie"),
		schemas.CommandAddCookie:        post("/session/{sessionId}/cookie"),
		schemas.CommandDeleteAllCookies: del("/session/{sessionId}/cookie"),
		schemas.CommandDeleteCookie:     del("/session/{sessionId}/cookie/{name}"),

		// Alerts.
		schemas.CommandAcceptAlert:   post("/session/{sessionId}/accept_alert"),
		schemas.CommandDismissAlert:  post("/session/{sessionId}/dismiss_alert"),
		schemas.CommandGetAlertText:  get("/session/{sessionId}/alert_text"),
		schemas.CommandSetAlertValue: post("/session/{sessionId}/alert_text"),

		// Scripts and timeouts.
		schemas.CommandExecuteScript:         post("/session/{sessionId}/execute"),
		schemas.CommandExecuteAsyncScript:    post("/session/{sessionId}/execute_async"),
		schemas.CommandSetTimeouts:           post("/session/{sessionId}/timeouts"),
		schemas.CommandImplicitlyWait:        post("/session/{sessionId}/timeouts/implicit_wait"),
		schemas.CommandSetAsyncScriptTimeout: post("/session/{sessionId}/timeouts/async_script"),

		// Mouse and keyboard.
		schemas.CommandMouseClick:              post("/session/{sessionId}/click"),
		schemas.CommandMouseDoubleClick:        post("/session/{sessionId}/doubleclick"),
		schemas.CommandMouseDown:               post("/session/{sessionId}/buttondown"),
		schemas.CommandMouseUp:                 post("/session/{sessionId}/buttonup"),
		schemas.CommandMouseMoveTo:             post("/session/{sessionId}/moveto"),
		schemas.CommandSendKeysToActiveElement: post("/session/{sessionId}/keys"),

		// Miscellaneous.
		schemas.CommandGetOrientation:       get("/session/{sessionId}/orientation"),
		schemas.CommandSetOrientation:       post("/session/{sessionId}/orientation"),
		schemas.CommandGetLog:               post("/session/{sessionId}/log"),
		schemas.CommandGetAvailableLogTypes: get("/session/{sessionId}/log/types"),
		schemas.CommandUploadFile:           post("/session/{sessionId}/file"),
	})
}
