// Package localesync propagates keys present in the fallback locale
// but missing elsewhere, preserving target-locale structure. Sync only
// ever adds entries: it never removes or overwrites existing
// target-locale content, and it never mutates the fallback locale.
package localesync

import (
	"os"
	"path/filepath"

	"github.com/lus/fluent.go/fluent/parser/ast"

	"github.com/roach88/fluentctl/internal/ftl"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/textdiff"
)

// FileResult reports one target-locale file a sync touched.
type FileResult struct {
	Locale string   `json:"locale"`
	Rel    string   `json:"rel"`
	Path   string   `json:"path"`
	Added  []string `json:"added"`
	Diff   string   `json:"diff,omitempty"`
}

// Locale syncs one non-fallback locale against the fallback files of a
// package. Missing target files are created with the fallback entries
// for the missing keys. With dryRun the merged content is diffed
// instead of written.
func Locale(cfg *manifest.Config, locale string, fallbackFiles []manifest.File, dryRun bool) ([]FileResult, error) {
	var results []FileResult

	for _, fb := range fallbackFiles {
		fallback, _, err := ftl.ParseFile(fb.Path)
		if err != nil {
			return nil, err
		}

		targetPath := filepath.Join(cfg.LocaleDir(locale), filepath.FromSlash(fb.Rel))
		targetRaw, readErr := os.ReadFile(targetPath)
		if readErr != nil && !os.IsNotExist(readErr) {
			return nil, readErr
		}
		target, _ := ftl.Parse(string(targetRaw))

		merged, added := merge(fallback, target)
		if len(added) == 0 {
			continue
		}

		content := ftl.Serialize(merged)
		result := FileResult{Locale: locale, Rel: fb.Rel, Path: targetPath, Added: added}

		if dryRun {
			result.Diff = textdiff.Unified(string(targetRaw), content)
			results = append(results, result)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(targetPath, []byte(content), 0o644); err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// merge appends the fallback entries for missing keys to the target
// resource. Group headers travel with the first missing entry of their
// section and are inserted at most once; everything already in the
// target is preserved untouched, in order.
func merge(fallback, target *ast.Resource) (*ast.Resource, []string) {
	targetKeys := ftl.KeySet(target)
	missing := make(map[string]struct{})
	for _, key := range ftl.Keys(fallback) {
		if _, ok := targetKeys[key]; !ok {
			missing[key] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return target, nil
	}

	headers := make(map[string]struct{})
	for _, entry := range target.Body {
		if gc, ok := entry.(*ast.GroupComment); ok {
			headers[ftl.FoldKey(gc.Content)] = struct{}{}
		}
	}

	out := append([]ast.Node(nil), target.Body...)
	var added []string
	var pendingHeader *ast.GroupComment
	newFile := len(target.Body) == 0

	for _, entry := range fallback.Body {
		switch e := entry.(type) {
		case *ast.GroupComment:
			pendingHeader = e
		case *ast.ResourceComment:
			// File-level and standalone comments only make sense when
			// the target file is being created from scratch; an existing
			// target owns its own commentary.
			if newFile {
				out = append(out, e)
			}
		case *ast.Comment:
			if newFile {
				out = append(out, e)
			}
		default:
			key, ok := ftl.EntryKey(entry)
			if !ok {
				continue
			}
			if _, want := missing[key]; !want {
				continue
			}
			if pendingHeader != nil {
				folded := ftl.FoldKey(pendingHeader.Content)
				if _, dup := headers[folded]; !dup {
					headers[folded] = struct{}{}
					out = append(out, pendingHeader)
				}
				pendingHeader = nil
			}
			out = append(out, entry)
			added = append(added, key)
		}
	}

	return ftl.NewResource(out...), added
}
