// File: cmd/helpers_test.go
package cmd

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	json "github.com/json-iterator/go"
)

// fakeDriver is a small in-memory WebDriver remote end. It speaks either
// dialect and counts the requests and TCP connections it receives.
type fakeDriver struct {
	server   *httptest.Server
	legacy   bool
	failFind bool

	sessions    atomic.Int32
	requests    atomic.Int32
	connections atomic.Int32

	mu     sync.Mutex
	bodies map[string]string
	paths  []string
}

func newFakeDriver(t *testing.T, legacy bool) *fakeDriver {
	t.Helper()
	d := &fakeDriver{legacy: legacy, bodies: make(map[string]string)}
	d.server = httptest.NewUnstartedServer(http.HandlerFunc(d.handle))
	d.server.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			d.connections.Add(1)
		}
	}
	d.server.Start()
	t.Cleanup(d.server.Close)
	return d
}

func (d *fakeDriver) handle(w http.ResponseWriter, r *http.Request) {
	d.requests.Add(1)
	body, _ := io.ReadAll(r.Body)
	d.mu.Lock()
	d.paths = append(d.paths, r.Method+" "+r.URL.Path)
	d.bodies[r.Method+" "+r.URL.Path] = string(body)
	d.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/status":
		d.ok(w, map[string]interface{}{"ready": true, "message": "ready to go"})
	case r.Method == http.MethodPost && r.URL.Path == "/session":
		id := fmt.Sprintf("s%d", d.sessions.Add(1))
		caps := map[string]interface{}{"browserName": "firefox"}
		if d.legacy {
			d.write(w, http.StatusOK, map[string]interface{}{"sessionId": id, "status": 0, "value": caps})
			return
		}
		d.write(w, http.StatusOK, map[string]interface{}{"value": map[string]interface{}{"sessionId": id, "capabilities": caps}})
	case len(parts) == 2 && parts[0] == "session" && r.Method == http.MethodDelete:
		d.ok(w, nil)
	case len(parts) == 3 && parts[2] == "url" && r.Method == http.MethodPost:
		d.ok(w, nil)
	case len(parts) == 3 && parts[2] == "element" && r.Method == http.MethodPost:
		if d.failFind {
			d.fail(w, http.StatusNotFound, 7, "no such element", "Unable to locate element")
			return
		}
		key := w3cElementKey
		if d.legacy {
			key = legacyElementKey
		}
		d.ok(w, map[string]interface{}{key: "e1"})
	case len(parts) == 5 && parts[4] == "enabled" && r.Method == http.MethodGet:
		d.ok(w, true)
	default:
		d.fail(w, http.StatusNotFound, 9, "unknown command", "unknown command: "+r.URL.Path)
	}
}

func (d *fakeDriver) ok(w http.ResponseWriter, value interface{}) {
	if d.legacy {
		d.write(w, http.StatusOK, map[string]interface{}{"status": 0, "value": value})
		return
	}
	d.write(w, http.StatusOK, map[string]interface{}{"value": value})
}

func (d *fakeDriver) fail(w http.ResponseWriter, httpStatus, legacyStatus int, code, message string) {
	if d.legacy {
		d.write(w, http.StatusInternalServerError, map[string]interface{}{"status": legacyStatus, "value": map[string]interface{}{"message": message}})
		return
	}
	d.write(w, httpStatus, map[string]interface{}{"value": map[string]interface{}{"error": code, "message": message, "stacktrace": ""}})
}

func (d *fakeDriver) write(w http.ResponseWriter, status int, payload interface{}) {
	out, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (d *fakeDriver) body(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bodies[key]
}

func (d *fakeDriver) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.paths...)
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir in newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
