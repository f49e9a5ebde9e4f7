// Package clean deletes FTL files no longer backed by any registered
// package, mirroring the fallback-locale file layout onto the target
// locale.
package clean

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/fluentctl/internal/manifest"
)

// Result lists the orphan files removed (or, in dry-run, reported)
// from one locale. Paths are relative to the locale directory.
type Result struct {
	Locale  string   `json:"locale"`
	Removed []string `json:"removed,omitempty"`
}

// Locale walks one target locale and removes every .ftl file that no
// registered package mirrors from the fallback locale. Emptied parent
// directories are removed opportunistically; failures to do so are
// ignored.
func Locale(cfg *manifest.Config, packages []string, locale string, dryRun bool) (*Result, error) {
	expected := make(map[string]struct{})
	for _, pkg := range packages {
		files, err := cfg.DiscoverFiles(cfg.FallbackLanguage, pkg)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			expected[file.Rel] = struct{}{}
		}
	}

	localeDir := cfg.LocaleDir(locale)
	var orphans []string
	err := filepath.WalkDir(localeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), manifest.FTLExt) {
			return nil
		}
		rel, relErr := filepath.Rel(localeDir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if _, ok := expected[rel]; !ok {
			orphans = append(orphans, rel)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return &Result{Locale: locale}, nil
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(orphans)
	result := &Result{Locale: locale, Removed: orphans}
	if dryRun {
		return result, nil
	}

	for _, rel := range orphans {
		path := filepath.Join(localeDir, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil {
			return nil, err
		}
		// Best effort; non-empty directories stay.
		_ = os.Remove(filepath.Dir(path))
	}
	return result, nil
}
