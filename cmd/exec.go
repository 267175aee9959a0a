// File: cmd/exec.go
package cmd

import (
	"fmt"
	"io"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/courier/api/schemas"
	"github.com/xkilldash9x/courier/internal/executor"
	"github.com/xkilldash9x/courier/internal/network"
	"github.com/xkilldash9x/courier/internal/observability"
)

func newExecCmd() *cobra.Command {
	var (
		sessionID string
		allowFail bool
	)

	execCmd := &cobra.Command{
		Use:   "exec <command> [parameters-json]",
		Short: "Executes a single command and prints the result as JSON",
		Example: `  courier exec status
  courier exec newSession '{"capabilities":{"alwaysMatch":{"browserName":"firefox"}}}'
  courier exec get --session 4f2c '{"url":"https://example.com"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			raw := ""
			if len(args) == 2 {
				raw = args[1]
			}
			params, err := parseParameters(raw)
			if err != nil {
				return err
			}

			logger := observability.GetLogger()
			exec, err := executor.New(cfg.Remote(), executor.WithLogger(logger), executor.WithUserAgent(network.BuildUserAgent(Version)))
			if err != nil {
				return err
			}
			defer func() {
				if cerr := exec.Close(); cerr != nil {
					logger.Warn("Failed to close executor", zap.Error(cerr))
				}
			}()

			command := schemas.NewCommand(sessionID, args[0], params)
			if payload, err := command.ParametersJSON(); err == nil {
				logger.Debug("Executing command", zap.Stringer("command", command), zap.ByteString("parameters", payload))
			}
			result, err := exec.Execute(ctx, command)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Status.IsSuccess() && !allowFail {
				return fmt.Errorf("%s returned %s: %s", args[0], result.Status, result.ErrorMessage())
			}
			return nil
		},
	}

	execCmd.Flags().StringVarP(&sessionID, "session", "s", "", "session the command targets")
	execCmd.Flags().BoolVar(&allowFail, "allow-failure", false, "exit 0 even when the server reports a failure status")
	return execCmd
}

// parseParameters decodes a JSON object into parameters, keeping the order of
// its members.
func parseParameters(raw string) (schemas.Parameters, error) {
	if strings.TrimSpace(raw) == "" {
		return schemas.Parameters{}, nil
	}

	iter := json.ParseString(json.ConfigCompatibleWithStandardLibrary, raw)
	if iter.WhatIsNext() != json.ObjectValue {
		return schemas.Parameters{}, fmt.Errorf("%w: parameters must be a JSON object", executor.ErrInvalidArgument)
	}

	var params []schemas.Param
	iter.ReadObjectCB(func(it *json.Iterator, field string) bool {
		params = append(params, schemas.Param{Name: field, Value: it.Read()})
		return true
	})
	if iter.Error != nil {
		return schemas.Parameters{}, fmt.Errorf("%w: malformed parameters: %v", executor.ErrInvalidArgument, iter.Error)
	}
	return schemas.NewParameters(params...), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
