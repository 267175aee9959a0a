// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/courier/internal/config"
	"github.com/xkilldash9x/courier/internal/observability"
)

func TestMain(m *testing.M) {
	// The first Initialize wins, so commands run by tests keep this quiet logger.
	homedir.DisableCache = true
	observability.Initialize(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "cmd-test"}, zapcore.AddSync(io.Discard))
	os.Exit(m.Run())
}

// runCommand executes a fresh command tree with args and returns stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	// Keep config discovery away from the developer's files.
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	rootCmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
