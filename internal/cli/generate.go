package cli

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/fluentctl/internal/generate"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/workpool"
)

// GenerateReport aggregates per-package generation results.
type GenerateReport struct {
	Results      []generate.Result `json:"results"`
	ChangedCount int               `json:"changed_count"`
	Failures     []Failure         `json:"failures,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var aggressive, dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:   "generate <manifest>...",
		Short: "Generate fallback-locale FTL files from package manifests",
		Long: `Generate or update each package's fallback-locale FTL file from its
manifest's declared types.

The default conservative merge keeps existing translations for declared
keys and never deletes unrecognized entries; --aggressive regenerates
every declared entry and drops everything else.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, args, aggressive, dryRun, workers, cmd)
		},
	}

	cmd.Flags().BoolVar(&aggressive, "aggressive", false, "regenerate declared entries, dropping stale content")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print diffs instead of writing files")
	cmd.Flags().IntVar(&workers, "workers", workpool.DefaultSize, "max packages generated concurrently")

	return cmd
}

func runGenerate(opts *RootOptions, manifestPaths []string, aggressive, dryRun bool, workers int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}
	manifests, err := manifest.LoadAll(manifestPaths)
	if err != nil {
		return commandError(formatter, err)
	}

	mode := generate.Conservative
	if aggressive {
		mode = generate.Aggressive
	}

	pool, err := workpool.New(workers)
	if err != nil {
		return commandError(formatter, err)
	}
	defer pool.Release()

	outcomes, err := workpool.Collect(cmd.Context(), pool, manifests,
		func(m *manifest.Manifest) (*generate.Result, error) {
			// Worker goroutines share stderr; slog serializes writes.
			slog.Debug("generating package", "package", m.Package)
			return generate.Run(generate.Options{
				Dir:     cfg.FallbackDir(),
				Package: m.Package,
				Mode:    mode,
				DryRun:  dryRun,
			}, m.Types)
		})
	if err != nil {
		return commandError(formatter, err)
	}

	report := &GenerateReport{}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			report.Failures = append(report.Failures, Failure{
				Package: outcome.Input.Package,
				Message: outcome.Err.Error(),
			})
			continue
		}
		report.Results = append(report.Results, *outcome.Value)
		if outcome.Value.Changed {
			report.ChangedCount++
		}
	}
	// Completion order is not deterministic even though Collect keeps
	// input order; callers may pass manifests in any order.
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Package < report.Results[j].Package
	})
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Package < report.Failures[j].Package
	})

	if len(report.Failures) > 0 {
		message := fmt.Sprintf("generation failed for %d package(s)", len(report.Failures))
		if formatter.Format == "text" {
			printGenerateText(formatter, report, dryRun)
		}
		return formatter.FailureReport(manifest.ErrCodeWriteFailed, message, report)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	printGenerateText(formatter, report, dryRun)
	return nil
}

func printGenerateText(formatter *OutputFormatter, report *GenerateReport, dryRun bool) {
	for _, result := range report.Results {
		state := "unchanged"
		if result.Changed {
			state = "changed"
			if dryRun {
				state = "would change"
			}
		}
		fmt.Fprintf(formatter.Writer, "%s: %s (%s)\n", result.Package, result.Path, state)
		if dryRun && result.Diff != "" {
			fmt.Fprintln(formatter.Writer, result.Diff)
		}
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(formatter.Writer, "%s: failed: %s\n", failure.Package, failure.Message)
	}
	if len(report.Failures) == 0 {
		fmt.Fprintf(formatter.Writer, "✓ %d package(s), %d changed\n", len(report.Results), report.ChangedCount)
	}
}
