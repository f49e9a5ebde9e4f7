package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/fluentctl/internal/localesync"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/workpool"
)

// SyncReport aggregates a sync run across target locales.
type SyncReport struct {
	AddedCount  int                     `json:"added_count"`
	LocaleCount int                     `json:"locale_count"`
	SyncedKeys  []string                `json:"synced_keys"`
	Files       []localesync.FileResult `json:"files,omitempty"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Propagate fallback-locale keys to all other locales",
		Long: `Copy entries that exist in the fallback locale but are missing from
other locales, preserving each target file's existing content. Sync
only ever adds entries; it never overwrites translations and never
touches the fallback locale itself.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, dryRun, workers, cmd)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print diffs instead of writing files")
	cmd.Flags().IntVar(&workers, "workers", workpool.DefaultSize, "max locales synced concurrently")

	return cmd
}

func runSync(opts *RootOptions, dryRun bool, workers int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, formatter)
	if err != nil {
		return err
	}
	packages, err := cfg.Packages()
	if err != nil {
		return commandError(formatter, err)
	}
	targets, err := cfg.TargetLocales()
	if err != nil {
		return commandError(formatter, err)
	}

	// Fallback files are read once up front; every locale task only
	// writes inside its own directory tree.
	fallbackFiles := make(map[string][]manifest.File, len(packages))
	for _, pkg := range packages {
		files, discoverErr := cfg.DiscoverFiles(cfg.FallbackLanguage, pkg)
		if discoverErr != nil {
			return commandError(formatter, discoverErr)
		}
		fallbackFiles[pkg] = files
	}

	pool, err := workpool.New(workers)
	if err != nil {
		return commandError(formatter, err)
	}
	defer pool.Release()

	outcomes, err := workpool.Collect(cmd.Context(), pool, targets,
		func(locale string) ([]localesync.FileResult, error) {
			var results []localesync.FileResult
			for _, pkg := range packages {
				pkgResults, syncErr := localesync.Locale(cfg, locale, fallbackFiles[pkg], dryRun)
				if syncErr != nil {
					return nil, syncErr
				}
				results = append(results, pkgResults...)
			}
			return results, nil
		})
	if err != nil {
		return commandError(formatter, err)
	}

	report := &SyncReport{SyncedKeys: []string{}}
	var failures []Failure
	keySet := make(map[string]struct{})
	touchedLocales := make(map[string]struct{})
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures = append(failures, Failure{Message: fmt.Sprintf("%s: %s", outcome.Input, outcome.Err)})
			continue
		}
		for _, file := range outcome.Value {
			report.Files = append(report.Files, file)
			report.AddedCount += len(file.Added)
			touchedLocales[file.Locale] = struct{}{}
			for _, key := range file.Added {
				keySet[key] = struct{}{}
			}
		}
	}
	report.LocaleCount = len(touchedLocales)
	for key := range keySet {
		report.SyncedKeys = append(report.SyncedKeys, key)
	}
	sort.Strings(report.SyncedKeys)
	sort.Slice(report.Files, func(i, j int) bool {
		if report.Files[i].Locale != report.Files[j].Locale {
			return report.Files[i].Locale < report.Files[j].Locale
		}
		return report.Files[i].Rel < report.Files[j].Rel
	})

	if len(failures) > 0 {
		if formatter.Format == "text" {
			for _, failure := range failures {
				fmt.Fprintf(formatter.Writer, "failed: %s\n", failure.Message)
			}
		}
		return formatter.FailureReport(manifest.ErrCodeWriteFailed,
			fmt.Sprintf("sync failed for %d locale(s)", len(failures)), report)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	for _, file := range report.Files {
		fmt.Fprintf(formatter.Writer, "%s/%s: +%d key(s)\n", file.Locale, file.Rel, len(file.Added))
		if dryRun && file.Diff != "" {
			fmt.Fprintln(formatter.Writer, file.Diff)
		}
	}
	fmt.Fprintf(formatter.Writer, "✓ %d key(s) across %d locale(s)\n", report.AddedCount, report.LocaleCount)
	return nil
}
