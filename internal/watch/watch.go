// Package watch rebuilds packages when their source files change. A
// single event loop owns all mutable state: change notifications are
// debounced per package, each rebuild runs on its own goroutine, and
// results flow back over a channel so only the loop ever applies them.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Defaults for the debounce window and the loop tick.
const (
	DefaultDebounce = 250 * time.Millisecond
	DefaultTick     = 50 * time.Millisecond
)

// RunFunc rebuilds one package and reports whether output changed.
type RunFunc func(ctx context.Context, pkg string) (changed bool, err error)

// ResolveFunc maps a changed filesystem path to the affected packages.
// Returning nil means the path is not interesting.
type ResolveFunc func(path string) []string

// PackageRun is the outcome of one background rebuild.
type PackageRun struct {
	Package  string        `json:"package"`
	RunID    string        `json:"run_id"`
	Changed  bool          `json:"changed"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Options configures a Loop. Run is required.
type Options struct {
	Debounce time.Duration
	Tick     time.Duration
	Run      RunFunc
	Resolve  ResolveFunc
	Logger   *slog.Logger
	// OnResult, if set, is called from the loop goroutine for every
	// applied result.
	OnResult func(PackageRun)
}

// Loop is the watch-mode event loop.
type Loop struct {
	opts    Options
	events  chan string
	results chan PackageRun

	mu    sync.Mutex
	state map[string]PackageRun
}

// NewLoop builds a loop; Run starts it.
func NewLoop(opts Options) *Loop {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Loop{
		opts:    opts,
		events:  make(chan string, 64),
		results: make(chan PackageRun, 16),
		state:   make(map[string]PackageRun),
	}
}

// Notify queues a changed path. Safe from any goroutine; a full queue
// drops the notification, which is acceptable since a follow-up event
// for the same package re-arms the debounce anyway.
func (l *Loop) Notify(path string) {
	select {
	case l.events <- path:
	default:
	}
}

// State returns a snapshot of the latest applied result per package.
func (l *Loop) State() map[string]PackageRun {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]PackageRun, len(l.state))
	for k, v := range l.state {
		out[k] = v
	}
	return out
}

// Run drives the loop until ctx is canceled. In-flight rebuilds are
// never aborted; a rebuild finishing after a newer one for the same
// package simply overwrites its state entry (last-write-wins).
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.opts.Tick)
	defer ticker.Stop()

	// pending holds, per package, the time of its most recent event.
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-l.events:
			for _, pkg := range l.resolve(path) {
				pending[pkg] = time.Now()
			}

		case result := <-l.results:
			l.apply(result)

		case now := <-ticker.C:
			for pkg, last := range pending {
				if now.Sub(last) < l.opts.Debounce {
					continue
				}
				delete(pending, pkg)
				l.spawn(ctx, pkg)
			}
		}
	}
}

func (l *Loop) resolve(path string) []string {
	if l.opts.Resolve == nil {
		return []string{path}
	}
	return l.opts.Resolve(path)
}

func (l *Loop) spawn(ctx context.Context, pkg string) {
	runID := uuid.NewString()
	l.opts.Logger.Debug("rebuild scheduled", "package", pkg, "run_id", runID)

	go func() {
		start := time.Now()
		changed, err := l.opts.Run(ctx, pkg)
		result := PackageRun{
			Package:  pkg,
			RunID:    runID,
			Changed:  changed,
			Err:      err,
			Duration: time.Since(start),
		}
		select {
		case l.results <- result:
		case <-ctx.Done():
		}
	}()
}

func (l *Loop) apply(result PackageRun) {
	l.mu.Lock()
	l.state[result.Package] = result
	l.mu.Unlock()

	if result.Err != nil {
		l.opts.Logger.Error("rebuild failed",
			"package", result.Package, "run_id", result.RunID, "error", result.Err)
	} else {
		l.opts.Logger.Info("rebuild finished",
			"package", result.Package, "run_id", result.RunID,
			"changed", result.Changed, "duration", result.Duration)
	}
	if l.opts.OnResult != nil {
		l.opts.OnResult(result)
	}
}

// WatchDirs forwards filesystem events from dirs and their subtrees
// into the loop until ctx is canceled. fsnotify watches are not
// recursive, so every subdirectory is registered individually and
// directories created while watching are registered as they appear.
// Only mutating events (create, write, rename, remove) are forwarded.
func (l *Loop) WatchDirs(ctx context.Context, dirs []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addTree(watcher, dir); err != nil {
			return err
		}
	}

	mutating := fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := addTree(watcher, event.Name); addErr != nil {
						l.opts.Logger.Warn("watch new directory",
							"dir", event.Name, "error", addErr)
					}
				}
			}
			if event.Op&mutating != 0 {
				l.Notify(event.Name)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.opts.Logger.Warn("watcher error", "error", watchErr)
		}
	}
}

// addTree registers root and every directory below it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
