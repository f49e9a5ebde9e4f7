package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/fluentctl/internal/clean"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/workpool"
)

// CleanReport aggregates orphan removal across target locales.
type CleanReport struct {
	Results      []clean.Result `json:"results"`
	RemovedCount int            `json:"removed_count"`
	Changed      bool           `json:"changed"`
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:   "clean <manifest>...",
		Short: "Delete orphaned FTL files from non-fallback locales",
		Long: `Remove .ftl files in non-fallback locales that no registered package
mirrors from the fallback locale. The manifests given are the set of
still-registered packages; their files are never touched.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(rootOpts, args, dryRun, workers, cmd)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report orphans without deleting")
	cmd.Flags().IntVar(&workers, "workers", workpool.DefaultSize, "max locales cleaned concurrently")

	return cmd
}

func runClean(opts *RootOptions, manifestPaths []string, dryRun bool, workers int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}
	manifests, err := manifest.LoadAll(manifestPaths)
	if err != nil {
		return commandError(formatter, err)
	}
	packages := make([]string, 0, len(manifests))
	for _, m := range manifests {
		packages = append(packages, m.Package)
	}
	targets, err := cfg.TargetLocales()
	if err != nil {
		return commandError(formatter, err)
	}

	pool, err := workpool.New(workers)
	if err != nil {
		return commandError(formatter, err)
	}
	defer pool.Release()

	outcomes, err := workpool.Collect(cmd.Context(), pool, targets,
		func(locale string) (*clean.Result, error) {
			return clean.Locale(cfg, packages, locale, dryRun)
		})
	if err != nil {
		return commandError(formatter, err)
	}

	report := &CleanReport{}
	var failures []Failure
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures = append(failures, Failure{Message: fmt.Sprintf("%s: %s", outcome.Input, outcome.Err)})
			continue
		}
		report.Results = append(report.Results, *outcome.Value)
		report.RemovedCount += len(outcome.Value.Removed)
	}
	report.Changed = report.RemovedCount > 0 && !dryRun
	sort.Slice(report.Results, func(i, j int) bool { return report.Results[i].Locale < report.Results[j].Locale })

	if len(failures) > 0 {
		if formatter.Format == "text" {
			for _, failure := range failures {
				fmt.Fprintf(formatter.Writer, "failed: %s\n", failure.Message)
			}
		}
		return formatter.FailureReport(manifest.ErrCodeWriteFailed,
			fmt.Sprintf("clean failed for %d locale(s)", len(failures)), report)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	for _, result := range report.Results {
		for _, rel := range result.Removed {
			verb := "removed"
			if dryRun {
				verb = "orphan"
			}
			fmt.Fprintf(formatter.Writer, "%s: %s/%s\n", verb, result.Locale, rel)
		}
	}
	fmt.Fprintf(formatter.Writer, "✓ %d orphan(s)\n", report.RemovedCount)
	return nil
}
