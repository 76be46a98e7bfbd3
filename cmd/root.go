// =============================================================================
// DTB to X Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'convert', 'check') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (dtb2x)
//   ├── convertCmd (dtb2x convert)
//   ├── checkCmd (dtb2x check)
//   └── versionCmd (dtb2x version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration (file, .env, environment)
//   3. Setting up logging on stderr
//
// EXIT CODES:
//   0   - Success
//   1   - Conversion or runtime failure
//   2   - Bad arguments or configuration
//   130 - Interrupted
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ginjaninja78/dtb2x/internal/config"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// defaultConfigFile is read from the working directory when --config is not
// given. It may be absent.
const defaultConfigFile = "dtb2x.yaml"

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg is the loaded configuration, set before any subcommand runs.
var cfg = config.Default()

// logger writes to stderr; stdout may carry converted output.
var logger = zerolog.Nop()

// clock is the time source for statistics and generated file names.
var clock = clockwork.NewRealClock()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dtb2x",
	Short: "DTB to X Converter - Convert DTB team rosters to CSV, XLSX or XML",
	Long: `dtb2x converts DTB files, tab indented rosters of groups, teams and
players, into flat tables (CSV, XLSX) or a nested XML document.

Each DTB line describes one record:
  Group:   "name - note"
  Team:    "\tname - note"
  Player:  "\t\treg - surname name, date_of_birth , note"

Example Usage:
  dtb2x convert -i soupiska.txt -o soupiska.xlsx   # Format from the extension
  dtb2x convert --loose < soupiska.txt > out.csv   # Tolerant parsing, stdio
  dtb2x convert --input-dir in --output-dir out    # Batch conversion
  dtb2x check -i soupiska.txt                      # Validate only`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI and returns the process exit code. Cancelling ctx
// interrupts a running conversion.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return ExitCode(err)
}

// ExitCode maps an error returned by a command to an exit code.
func ExitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &usage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// usageError marks bad arguments and configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// =============================================================================
// CONFIGURATION AND LOGGING
// =============================================================================

// initConfig loads the configuration and sets up the logger.
// An explicitly given --config file must exist; the default one may not.
func initConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return &usageError{err: err}
	}
	if verbose {
		loaded.LogLevel = "debug"
	}

	l, err := newLogger(cmd.ErrOrStderr(), loaded.LogLevel, loaded.LogFormat)
	if err != nil {
		return &usageError{err: err}
	}

	cfg, logger = loaded, l
	logger.Debug().Str("config", cfgFile).Str("format", cfg.Format).Bool("loose", cfg.Loose).Msg("configuration loaded")
	return nil
}

// newLogger creates a logger writing JSON lines or human readable lines to w.
// Colors are used only when w is a terminal.
func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if format != "json" {
		console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			console.Out = colorable.NewColorable(f)
			console.NoColor = false
		}
		w = console
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Allows the user to specify a configuration file.
	// YAML (.yaml, .yml) and TOML (.toml) are supported.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file (YAML or TOML)",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}
