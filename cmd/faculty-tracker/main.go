// Command faculty-tracker discovers faculty profiles, extracts staff records from
// PDF documents and reconciles them into one canonical list.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

// app carries what every subcommand needs once the root has initialized.
type app struct {
	flags  globalFlags
	cfg    *common.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError("Error: %v\n", err)
		if common.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "faculty-tracker",
		Short:         "Collect and reconcile faculty records from a profile directory and PDF documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "TOML config file")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	pf.StringVar(&a.flags.logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", "text", "text or json")

	root.AddCommand(
		newRunCmd(a),
		newProbeCmd(a),
		newExtractCmd(a),
		newReconcileCmd(a),
	)
	return root
}

func (a *app) init(logOut io.Writer) error {
	logger, err := newLogger(logOut, a.flags.logLevel, a.flags.logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	a.logger = logger

	if err := common.LoadEnvFile(a.flags.envFile); err != nil {
		return common.ConfigError("%v", err)
	}
	cfg, err := common.LoadConfig(a.flags.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, common.ConfigError("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, common.ConfigError("invalid --log-format %q: want text or json", format)
}
