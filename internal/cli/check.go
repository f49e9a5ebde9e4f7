package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/fluentctl/internal/check"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/workpool"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "check <manifest>...",
		Short: "Validate FTL files against declared keys and variables",
		Long: `Validate every locale's FTL files against each manifest's expected key
set. Reports syntax errors, missing keys (errors) and unreferenced
variables (warnings). Success requires zero diagnostics of any
severity.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args, workers, cmd)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", workpool.DefaultSize, "max packages checked concurrently")

	return cmd
}

func runCheck(opts *RootOptions, manifestPaths []string, workers int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}
	// Loading expected keys is the sequential prerequisite; file reads
	// and validation then run in parallel per package.
	manifests, err := manifest.LoadAll(manifestPaths)
	if err != nil {
		return commandError(formatter, err)
	}
	locales, err := cfg.Locales()
	if err != nil {
		return commandError(formatter, err)
	}

	pool, err := workpool.New(workers)
	if err != nil {
		return commandError(formatter, err)
	}
	defer pool.Release()

	outcomes, err := workpool.Collect(cmd.Context(), pool, manifests,
		func(m *manifest.Manifest) ([]check.Issue, error) {
			var issues []check.Issue
			for _, locale := range locales {
				files, discoverErr := cfg.DiscoverFiles(locale, m.Package)
				if discoverErr != nil {
					return nil, discoverErr
				}
				slog.Debug("checking package locale",
					"package", m.Package, "locale", locale, "files", len(files))
				localeIssues, checkErr := check.Package(locale, cfg.MainFile(locale, m.Package).Path, files, m.Keys)
				if checkErr != nil {
					return nil, checkErr
				}
				issues = append(issues, localeIssues...)
			}
			return issues, nil
		})
	if err != nil {
		return commandError(formatter, err)
	}

	var all []check.Issue
	var failures []Failure
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures = append(failures, Failure{Package: outcome.Input.Package, Message: outcome.Err.Error()})
			continue
		}
		all = append(all, outcome.Value...)
	}
	if len(failures) > 0 {
		// Unreadable files are command-level failures, not diagnostics.
		return commandError(formatter, &manifest.LoadError{
			Code:    manifest.ErrCodeScanError,
			Message: fmt.Sprintf("%d package(s) could not be checked: %s", len(failures), failures[0].Message),
		})
	}

	// Parallel completion order is unspecified; the report re-sorts.
	report := check.NewReport(all)

	if report.Clean() {
		if formatter.Format == "json" {
			return formatter.Success(report)
		}
		fmt.Fprintf(formatter.Writer, "✓ all keys present (%d package(s), %d locale(s))\n",
			len(manifests), len(locales))
		return nil
	}

	if formatter.Format == "text" {
		printCheckText(formatter, report)
	}
	return formatter.FailureReport(manifest.ErrCodeGeneric,
		fmt.Sprintf("check failed: %d error(s), %d warning(s)", report.ErrorCount, report.WarningCount),
		report)
}

func printCheckText(formatter *OutputFormatter, report *check.Report) {
	fmt.Fprintf(formatter.Writer, "✗ %d error(s), %d warning(s)\n\n", report.ErrorCount, report.WarningCount)
	for _, issue := range report.Issues {
		location := issue.File
		if issue.Span != nil {
			location = fmt.Sprintf("%s@%d..%d", issue.File, issue.Span[0], issue.Span[1])
		}
		fmt.Fprintf(formatter.Writer, "  [%s] %s %s: %s\n", issue.Severity, issue.Locale, location, issue.Help)
	}
}
