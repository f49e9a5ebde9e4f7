// Package cli wires the FTL maintenance engines into the fluentctl
// command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/roach88/fluentctl/internal/manifest"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // locale config path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fluentctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fluentctl",
		Short: "Maintain Fluent (FTL) translation resources",
		Long:  "Generate, format, validate, sync and clean Fluent translation files across locales.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", manifest.DefaultConfigName, "locale config file")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewFormatCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the output formatter for one command invocation.
// Verbose and diagnostic output goes to stderr so JSON stays parseable.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig resolves the locale configuration; failures are
// command-level errors (exit code 2).
func loadConfig(opts *RootOptions, formatter *OutputFormatter) (*manifest.Config, error) {
	cfg, err := manifest.LoadConfig(opts.Config)
	if err != nil {
		return nil, commandError(formatter, err)
	}
	return cfg, nil
}

// commandError reports a load/config failure and converts it into an
// ExitError with the command-error code.
func commandError(formatter *OutputFormatter, err error) error {
	code := manifest.ErrCodeGeneric
	if loadErr, ok := err.(*manifest.LoadError); ok {
		code = loadErr.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, err.Error()))
}
