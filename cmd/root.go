// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/courier/internal/config"
	"github.com/xkilldash9x/courier/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// flagBindings maps persistent flags onto their configuration keys.
var flagBindings = map[string]string{
	"remote-url": "remote.url",
	"timeout":    "remote.timeout",
	"keep-alive": "remote.keep_alive",
	"proxy":      "remote.proxy_url",
	"log-level":  "logger.level",
}

// NewRootCommand builds a fresh command tree. Every call returns independent
// flag state, so it can be executed repeatedly in tests.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "courier",
		Short:         "Courier sends WebDriver commands to a remote automation server.",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return err
			}

			// Logs go to stderr so command output on stdout stays machine readable.
			observability.Initialize(cfg.Logger(), zapcore.Lock(os.Stderr))
			observability.GetLogger().Debug("Starting courier",
				zap.String("version", Version),
				zap.String("remote", cfg.Remote().URL))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is ./courier.yaml or ~/.courier/courier.yaml)")
	flags.String("remote-url", "", "base URL of the remote automation server")
	flags.Duration("timeout", 0, "per request timeout")
	flags.Bool("keep-alive", true, "reuse connections to the remote server")
	flags.String("proxy", "", "HTTP proxy used to reach the remote server")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newProbeCmd())
	return rootCmd
}

// Execute runs the command tree with ctx, logging any failure.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger := observability.GetLogger()
		if errors.Is(err, context.Canceled) {
			logger.Info("Command aborted")
		} else {
			logger.Error("Command execution failed", zap.Error(err))
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
		observability.Sync()
		return err
	}
	observability.Sync()
	return nil
}

// initializeConfig layers the config file, COURIER_ environment variables and
// changed flags over the defaults already set on v.
func initializeConfig(cmd *cobra.Command, v *viper.Viper) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".courier"))
		}
		v.SetConfigName("courier")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("COURIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// configFromContext returns the configuration stored by PersistentPreRunE.
func configFromContext(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not initialized")
	}
	return cfg, nil
}
