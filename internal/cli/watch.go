package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/fluentctl/internal/generate"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var aggressive bool

	cmd := &cobra.Command{
		Use:   "watch <manifest>...",
		Short: "Regenerate packages when manifests or fallback files change",
		Long: `Watch the given manifests and the fallback locale's files, regenerating
each affected package when its inputs change. Changes are debounced per
package; regeneration runs in the background and never blocks the
event loop. Stop with Ctrl-C.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, args, aggressive, cmd)
		},
	}

	cmd.Flags().BoolVar(&aggressive, "aggressive", false, "regenerate declared entries, dropping stale content")

	return cmd
}

func runWatch(opts *RootOptions, manifestPaths []string, aggressive bool, cmd *cobra.Command) error {
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

	manifestByPkg := make(map[string]string, len(manifests))
	pkgByManifest := make(map[string]string, len(manifests))
	for i, m := range manifests {
		abs, absErr := filepath.Abs(manifestPaths[i])
		if absErr != nil {
			abs = manifestPaths[i]
		}
		manifestByPkg[m.Package] = abs
		pkgByManifest[abs] = m.Package
	}

	loop := watch.NewLoop(watch.Options{
		Logger:  slog.Default(),
		Resolve: resolveChangedPath(cfg, pkgByManifest),
		Run: func(ctx context.Context, pkg string) (bool, error) {
			// Reload the manifest so declaration changes take effect.
			m, loadErr := manifest.Load(manifestByPkg[pkg])
			if loadErr != nil {
				return false, loadErr
			}
			result, runErr := generate.Run(generate.Options{
				Dir:     cfg.FallbackDir(),
				Package: pkg,
				Mode:    mode,
			}, m.Types)
			if runErr != nil {
				return false, runErr
			}
			return result.Changed, nil
		},
		OnResult: func(result watch.PackageRun) {
			if result.Err != nil {
				fmt.Fprintf(formatter.GetErrWriter(), "✗ %s: %v\n", result.Package, result.Err)
				return
			}
			state := "unchanged"
			if result.Changed {
				state = "regenerated"
			}
			formatter.VerboseLog("run %s finished in %s", result.RunID, result.Duration)
			fmt.Fprintf(formatter.Writer, "✓ %s: %s\n", result.Package, state)
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dirs := watchDirs(cfg, manifestByPkg)
	go func() {
		if watchErr := loop.WatchDirs(ctx, dirs); watchErr != nil && !errors.Is(watchErr, context.Canceled) {
			slog.Error("watcher stopped", "error", watchErr)
			stop()
		}
	}()

	fmt.Fprintf(formatter.GetErrWriter(), "watching %d package(s), Ctrl-C to stop\n", len(manifests))
	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchDirs collects the directories to watch: each manifest's parent,
// the fallback locale root, and every package's namespaced subtree
// present at startup.
func watchDirs(cfg *manifest.Config, manifestByPkg map[string]string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	add(cfg.FallbackDir())
	for pkg, path := range manifestByPkg {
		add(filepath.Dir(path))
		add(filepath.Join(cfg.FallbackDir(), pkg))
	}
	return dirs
}

// resolveChangedPath maps a changed file to the package it feeds:
// either a watched manifest, or an FTL file in the fallback locale
// whose top path segment names a watched package.
func resolveChangedPath(cfg *manifest.Config, pkgByManifest map[string]string) watch.ResolveFunc {
	watchedPkgs := make(map[string]struct{}, len(pkgByManifest))
	for _, pkg := range pkgByManifest {
		watchedPkgs[pkg] = struct{}{}
	}
	return func(path string) []string {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if pkg, ok := pkgByManifest[abs]; ok {
			return []string{pkg}
		}

		rel, err := filepath.Rel(cfg.FallbackDir(), path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return nil
		}
		rel = filepath.ToSlash(rel)
		var pkg string
		if idx := strings.Index(rel, "/"); idx >= 0 {
			pkg = rel[:idx]
		} else if strings.HasSuffix(rel, manifest.FTLExt) {
			pkg = strings.TrimSuffix(rel, manifest.FTLExt)
		}
		if _, watched := watchedPkgs[pkg]; !watched {
			return nil
		}
		return []string{pkg}
	}
}
