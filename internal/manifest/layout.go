package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one FTL file of a package within a locale. Rel is the path
// relative to the locale directory and is stable across locales, so it
// doubles as the file identity mirrored between fallback and targets.
type File struct {
	Path string
	Rel  string
}

// FTLExt is the resource file extension.
const FTLExt = ".ftl"

// MainFile returns the package's main resource path in a locale,
// whether or not it exists on disk.
func (c *Config) MainFile(locale, pkg string) File {
	rel := pkg + FTLExt
	return File{Path: filepath.Join(c.LocaleDir(locale), rel), Rel: rel}
}

// DiscoverFiles lists the package's FTL files that exist in a locale:
// the main {pkg}.ftl plus every nested file under {pkg}/. Results are
// sorted by relative path for deterministic processing.
func (c *Config) DiscoverFiles(locale, pkg string) ([]File, error) {
	var files []File

	main := c.MainFile(locale, pkg)
	if _, err := os.Stat(main.Path); err == nil {
		files = append(files, main)
	}

	nested, err := findFTLFiles(filepath.Join(c.LocaleDir(locale), pkg))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error(), Path: c.LocaleDir(locale)}
	}
	localeDir := c.LocaleDir(locale)
	for _, path := range nested {
		rel, relErr := filepath.Rel(localeDir, path)
		if relErr != nil {
			continue
		}
		files = append(files, File{Path: path, Rel: filepath.ToSlash(rel)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// LocaleFiles lists every FTL file under a locale, regardless of which
// package owns it. A missing locale directory yields an empty list.
func (c *Config) LocaleFiles(locale string) ([]File, error) {
	localeDir := c.LocaleDir(locale)
	paths, err := findFTLFiles(localeDir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error(), Path: localeDir}
	}
	files := make([]File, 0, len(paths))
	for _, path := range paths {
		rel, relErr := filepath.Rel(localeDir, path)
		if relErr != nil {
			continue
		}
		files = append(files, File{Path: path, Rel: filepath.ToSlash(rel)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Packages lists package names present in the fallback locale: one per
// top-level {pkg}.ftl file.
func (c *Config) Packages() ([]string, error) {
	entries, err := os.ReadDir(c.FallbackDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error(), Path: c.FallbackDir()}
	}
	var pkgs []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), FTLExt) {
			pkgs = append(pkgs, strings.TrimSuffix(entry.Name(), FTLExt))
		}
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

// findFTLFiles recursively collects .ftl paths under root. A missing
// root is not an error; packages without namespaced files are common.
func findFTLFiles(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), FTLExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
