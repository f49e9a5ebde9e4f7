package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/fluentctl/internal/format"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/workpool"
)

// FormatReport aggregates a formatting run across locales.
type FormatReport struct {
	FormattedCount int       `json:"formatted_count"`
	ErrorCount     int       `json:"error_count"`
	Errors         []Failure `json:"errors,omitempty"`
	// CheckedFiles lists files that would change, populated in --check
	// mode only.
	CheckedFiles []string `json:"checked_files,omitempty"`
}

// NewFormatCommand creates the format command.
func NewFormatCommand(rootOpts *RootOptions) *cobra.Command {
	var locales []string
	var checkOnly bool
	var workers int

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Rewrite FTL files into canonical form",
		Long: `Reformat every discovered FTL file: canonical spacing, grouped sections
with sorted keys, and misplaced entries moved under their matching
group header. Formatting is idempotent.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(rootOpts, locales, checkOnly, workers, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&locales, "locale", nil, "restrict to specific locales (default: all)")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "report files that would change without writing")
	cmd.Flags().IntVar(&workers, "workers", workpool.DefaultSize, "max files formatted concurrently")

	return cmd
}

func runFormat(opts *RootOptions, locales []string, checkOnly bool, workers int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}
	if len(locales) == 0 {
		locales, err = cfg.Locales()
		if err != nil {
			return commandError(formatter, err)
		}
	}

	var files []manifest.File
	for _, locale := range locales {
		localeFiles, err := cfg.LocaleFiles(locale)
		if err != nil {
			return commandError(formatter, err)
		}
		files = append(files, localeFiles...)
	}

	pool, err := workpool.New(workers)
	if err != nil {
		return commandError(formatter, err)
	}
	defer pool.Release()

	outcomes, err := workpool.Collect(cmd.Context(), pool, files,
		func(file manifest.File) (bool, error) {
			return format.File(file.Path, checkOnly)
		})
	if err != nil {
		return commandError(formatter, err)
	}

	report := &FormatReport{}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			report.ErrorCount++
			report.Errors = append(report.Errors, Failure{
				File:    outcome.Input.Rel,
				Message: outcome.Err.Error(),
			})
			continue
		}
		if !outcome.Value {
			continue
		}
		report.FormattedCount++
		if checkOnly {
			report.CheckedFiles = append(report.CheckedFiles, outcome.Input.Rel)
		}
	}
	sort.Slice(report.Errors, func(i, j int) bool { return report.Errors[i].File < report.Errors[j].File })
	sort.Strings(report.CheckedFiles)

	if report.ErrorCount > 0 {
		if formatter.Format == "text" {
			printFormatText(formatter, report, checkOnly)
		}
		return formatter.FailureReport(manifest.ErrCodeWriteFailed,
			fmt.Sprintf("formatting failed for %d file(s)", report.ErrorCount), report)
	}
	if checkOnly && report.FormattedCount > 0 {
		if formatter.Format == "text" {
			printFormatText(formatter, report, checkOnly)
		}
		return formatter.FailureReport(manifest.ErrCodeGeneric,
			fmt.Sprintf("%d file(s) need formatting", report.FormattedCount), report)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	printFormatText(formatter, report, checkOnly)
	return nil
}

func printFormatText(formatter *OutputFormatter, report *FormatReport, checkOnly bool) {
	for _, rel := range report.CheckedFiles {
		fmt.Fprintf(formatter.Writer, "needs formatting: %s\n", rel)
	}
	for _, failure := range report.Errors {
		fmt.Fprintf(formatter.Writer, "failed: %s: %s\n", failure.File, failure.Message)
	}
	if report.ErrorCount == 0 && !(checkOnly && report.FormattedCount > 0) {
		verb := "formatted"
		if checkOnly {
			verb = "checked"
		}
		fmt.Fprintf(formatter.Writer, "✓ %s %d file(s)\n", verb, report.FormattedCount)
	}
}
