// Package cli implements the janitor command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/config"
	"github.com/mrz1836/janitor/internal/metrics"
	"github.com/mrz1836/janitor/internal/output"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	assumeYes    bool
	timeout      time.Duration

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	cmdCtx    *CommandContext

	enrichOnce sync.Once
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "janitor",
	Short: "Clean up dust, empty accounts and stale approvals",
	Long: `Janitor scans a Solana or Base wallet for clutter and cleans it up.

It finds empty token accounts, dust balances and third-party spending
approvals, then reclaims rent, burns or swaps worthless tokens and revokes
approvals. Every transaction is shown and confirmed before it is signed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if verbose {
			writeRunSummary(cmd.ErrOrStderr(), metrics.Global)
		}
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	enrichOnce.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	err := rootCmd.Execute()
	if err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return janitorerr.ExitCode(err)
}

// formatErr prints err to stderr in the active output format.
func formatErr(err error) {
	if formatter != nil {
		_ = output.FormatError(os.Stderr, err, formatter.Format())
		return
	}
	_ = output.FormatError(os.Stderr, err, output.FormatText)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals(cmd *cobra.Command) error {
	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// .env files never override variables already exported
	if wd, err := os.Getwd(); err == nil {
		_ = config.LoadDotEnv(home, wd)
	} else {
		_ = config.LoadDotEnv(home)
	}

	// Load or create config
	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		// Use defaults if config doesn't exist
		cfg = config.Defaults()
		cfg.Home = home
	}

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	// Initialize logger
	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, cfg.Logging.File, cfg.Logging.Format)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	cmdCtx = NewCommandContext(cfg, logger, formatter)
	if cmd != nil && cmd.Context() != nil {
		SetCmdContext(cmd, cmdCtx)
	}

	return nil
}

// writeRunSummary prints the remote calls and transactions of this run.
func writeRunSummary(w io.Writer, m *metrics.Metrics) {
	snap := m.Snapshot()
	if snap.RPCCallsTotal == 0 && snap.TxSubmitted == 0 && snap.TxFailed == 0 && snap.TxRejected == 0 {
		return
	}
	out(w, "\n%d remote calls (%d failed, avg %.0fms)", snap.RPCCallsTotal, snap.RPCErrorsTotal, m.RPCLatencyAvgMs())
	if snap.TxSubmitted+snap.TxFailed+snap.TxRejected > 0 {
		out(w, ", %d tx submitted, %d failed, %d declined", snap.TxSubmitted, snap.TxFailed, snap.TxRejected)
	}
	outln(w)
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the global command context.
func Context() *CommandContext {
	return cmdCtx
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "inspect", Title: "Inspection:"},
		&cobra.Group{ID: "cleanup", Title: "Cleanup:"},
		&cobra.Group{ID: "config", Title: "Keys & Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID("config")

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "janitor data directory (default: ~/.janitor)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve every signature without prompting")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "deadline for the whole command (default: 2m for scans, 15m for cleanups)")
}
