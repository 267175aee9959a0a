// File: cmd/probe.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/courier/api/schemas"
	"github.com/xkilldash9x/courier/internal/config"
	"github.com/xkilldash9x/courier/internal/diagnostics"
	"github.com/xkilldash9x/courier/internal/executor"
	"github.com/xkilldash9x/courier/internal/network"
	"github.com/xkilldash9x/courier/internal/observability"
)

// Keys under which element references are returned by each dialect.
const (
	w3cElementKey    = "element-6066-11e4-a52e-4f735466cecf"
	legacyElementKey = "ELEMENT"
)

// quitTimeout bounds session teardown, which runs even after the probe's
// context has been cancelled.
const quitTimeout = 10 * time.Second

// newConnectionCounter is replaced in tests.
var newConnectionCounter = func(port int) diagnostics.ConnectionCounter {
	return diagnostics.NewDisconnectedCounter(port)
}

// probeReport summarizes a probe run.
type probeReport struct {
	Sessions        int           `json:"sessions"`
	PollsPerSession int           `json:"polls_per_session"`
	Commands        int64         `json:"commands"`
	Dialects        []string      `json:"dialects"`
	LingeringBefore *int          `json:"lingering_before,omitempty"`
	LingeringAfter  *int          `json:"lingering_after,omitempty"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

func newProbeCmd() *cobra.Command {
	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Opens sessions, polls an element and reports how many connections were left behind",
		Long: `Probe opens one or more sessions, navigates to a page, locates an element and
polls whether it is enabled, then quits. Lingering TIME_WAIT and CLOSE_WAIT
sockets towards the server are counted before and after the run; with keep-alive
enabled the difference should stay close to zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			probeCfg := cfg.Probe()
			flags := cmd.Flags()
			if flags.Changed("polls") {
				probeCfg.Polls, _ = flags.GetInt("polls")
			}
			if flags.Changed("sessions") {
				probeCfg.Sessions, _ = flags.GetInt("sessions")
			}
			if flags.Changed("page") {
				probeCfg.PageURL, _ = flags.GetString("page")
			}
			if err := probeCfg.Validate(); err != nil {
				return err
			}

			report, err := runProbe(ctx, cfg.Remote(), probeCfg, observability.GetLogger())
			if report != nil {
				if werr := writeJSON(cmd.OutOrStdout(), report); werr != nil && err == nil {
					err = werr
				}
			}
			return err
		},
	}

	probeCmd.Flags().Int("polls", 0, "number of isElementEnabled polls per session")
	probeCmd.Flags().Int("sessions", 0, "number of sessions probed in parallel")
	probeCmd.Flags().String("page", "", "page to navigate to before polling")
	return probeCmd
}

// runProbe drives probeCfg.Sessions sessions in parallel, each through its own
// executor, and counts lingering sockets around the run.
func runProbe(ctx context.Context, remote config.RemoteConfig, probeCfg config.ProbeConfig, logger *zap.Logger) (*probeReport, error) {
	logger = logger.Named("probe")
	counter := newConnectionCounter(remotePort(remote.URL))

	report := &probeReport{Sessions: probeCfg.Sessions, PollsPerSession: probeCfg.Polls}
	report.LingeringBefore = countLingering(ctx, counter, logger)

	var (
		mu       sync.Mutex
		commands int64
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < probeCfg.Sessions; i++ {
		worker := i
		g.Go(func() error {
			n, dialect, err := probeSession(gctx, remote, probeCfg, logger.With(zap.Int("worker", worker)))
			mu.Lock()
			commands += n
			if dialect != "" {
				report.Dialects = append(report.Dialects, dialect)
			}
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	report.Elapsed = time.Since(start)
	report.Commands = commands
	report.LingeringAfter = countLingering(context.WithoutCancel(ctx), counter, logger)

	fields := []zap.Field{
		zap.Int64("commands", report.Commands),
		zap.Duration("elapsed", report.Elapsed),
	}
	if report.LingeringBefore != nil && report.LingeringAfter != nil {
		fields = append(fields, zap.Int("lingering_delta", *report.LingeringAfter-*report.LingeringBefore))
	}
	if err != nil {
		logger.Error("Probe failed", append(fields, zap.Error(err))...)
		return report, err
	}
	logger.Info("Probe finished", fields...)
	return report, nil
}

// probeSession runs one session to completion and returns the number of
// commands sent and the dialect the executor ended up on.
func probeSession(ctx context.Context, remote config.RemoteConfig, probeCfg config.ProbeConfig, logger *zap.Logger) (sent int64, dialect string, err error) {
	exec, err := executor.New(remote,
		executor.WithLogger(logger),
		executor.WithUserAgent(network.BuildUserAgent(Version)))
	if err != nil {
		return 0, "", err
	}
	defer func() {
		if cerr := exec.Close(); cerr != nil {
			logger.Warn("Failed to close executor", zap.Error(cerr))
		}
	}()

	run := func(ctx context.Context, sessionID, name string, params ...schemas.Param) (*schemas.Result, error) {
		sent++
		result, err := exec.Execute(ctx, schemas.NewCommand(sessionID, name, schemas.NewParameters(params...)))
		if err != nil {
			return nil, err
		}
		if !result.Status.IsSuccess() {
			return result, fmt.Errorf("%s returned %s: %s", name, result.Status, result.ErrorMessage())
		}
		return result, nil
	}

	caps := map[string]interface{}{"browserName": probeCfg.Browser}
	session, err := run(ctx, "", schemas.CommandNewSession,
		schemas.Param{Name: "capabilities", Value: map[string]interface{}{"alwaysMatch": caps}},
		schemas.Param{Name: "desiredCapabilities", Value: caps},
	)
	if err != nil {
		return sent, "", fmt.Errorf("failed to create session: %w", err)
	}
	sessionID := session.SessionID
	dialect = exec.Dialect().String()
	logger = logger.With(zap.String("session_id", sessionID), zap.String("dialect", dialect))
	logger.Debug("Session created")

	defer func() {
		quitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), quitTimeout)
		defer cancel()
		if _, qerr := run(quitCtx, sessionID, schemas.CommandQuit); qerr != nil {
			logger.Warn("Failed to quit session", zap.Error(qerr))
		}
	}()

	if _, err := run(ctx, sessionID, schemas.CommandGet, schemas.Param{Name: "url", Value: probeCfg.PageURL}); err != nil {
		return sent, dialect, err
	}

	found, err := run(ctx, sessionID, schemas.CommandFindElement,
		schemas.Param{Name: "using", Value: probeCfg.Using},
		schemas.Param{Name: "value", Value: probeCfg.Locator},
	)
	if err != nil {
		return sent, dialect, err
	}
	elementID, ok := elementReference(found.Value)
	if !ok {
		return sent, dialect, fmt.Errorf("findElement returned no element reference: %v", found.Value)
	}

	limiter := rate.NewLimiter(rate.Limit(probeCfg.Rate), probeCfg.Burst)
	for i := 0; i < probeCfg.Polls; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return sent, dialect, err
		}
		if _, err := run(ctx, sessionID, schemas.CommandIsElementEnabled, schemas.Param{Name: "id", Value: elementID}); err != nil {
			return sent, dialect, fmt.Errorf("poll %d: %w", i+1, err)
		}
	}
	return sent, dialect, nil
}

// elementReference extracts the element id from a findElement value in
// either dialect.
func elementReference(value interface{}) (string, bool) {
	ref, ok := value.(map[string]interface{})
	if !ok {
		return "", false
	}
	for _, key := range []string{w3cElementKey, legacyElementKey} {
		if id, ok := ref[key].(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// countLingering returns nil when sockets cannot be counted on this host.
func countLingering(ctx context.Context, counter diagnostics.ConnectionCounter, logger *zap.Logger) *int {
	n, err := counter.Count(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Debug("Socket counting unavailable", zap.Error(err))
		}
		return nil
	}
	return &n
}

// remotePort returns the TCP port of the server URL, applying scheme defaults.
func remotePort(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		return n
	}
	switch u.Scheme {
	case "https":
		return 443
	case "http":
		return 80
	}
	return 0
}
