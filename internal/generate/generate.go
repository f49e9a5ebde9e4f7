// Package generate is the generation/merge engine: it combines declared
// message types with an existing fallback-locale resource under a
// conservative or aggressive merge policy.
//
// Conservative keeps every entry a translator may have touched: declared
// keys that already exist survive with their current value, and
// undeclared leftovers are appended rather than dropped. Aggressive
// rebuilds the file from declarations alone.
package generate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lus/fluent.go/fluent/parser/ast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/fluentctl/internal/ftl"
	"github.com/roach88/fluentctl/internal/manifest"
	"github.com/roach88/fluentctl/internal/textdiff"
)

// Mode selects the merge policy.
type Mode int

const (
	// Conservative preserves existing entries for re-declared keys and
	// never deletes unrecognized content.
	Conservative Mode = iota
	// Aggressive regenerates every declared entry and drops everything
	// else.
	Aggressive
)

// Options configures one package generation.
type Options struct {
	Dir     string // locale directory the package file lives in
	Package string
	Mode    Mode
	DryRun  bool
}

// Result reports what a generation did (or, in dry-run, would do).
type Result struct {
	Package string `json:"package"`
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Diff    string `json:"diff,omitempty"`
}

// Run generates {dir}/{package}.ftl from the declared types, merging
// with whatever is already on disk. The file is rewritten only when the
// serialized content differs; a file that does not exist stays absent
// when there is nothing to write.
func Run(opts Options, types []manifest.TypeInfo) (*Result, error) {
	path := filepath.Join(opts.Dir, opts.Package+manifest.FTLExt)

	existingRaw, err := os.ReadFile(path)
	exists := true
	if os.IsNotExist(err) {
		exists = false
		existingRaw = nil
	} else if err != nil {
		return nil, err
	}

	// Parse errors degrade to the partial AST; junk survives as-is.
	existing, _ := ftl.Parse(string(existingRaw))

	target := buildTarget(mergeTypes(types))
	merged := mergeResources(target, existing, opts.Mode)
	content := ftl.Serialize(merged)

	result := &Result{Package: opts.Package, Path: path}
	if content == string(existingRaw) || (!exists && content == "") {
		return result, nil
	}
	result.Changed = true

	if opts.DryRun {
		result.Diff = textdiff.Unified(string(existingRaw), content)
		return result, nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, err
	}
	return result, nil
}

// mergeTypes groups same-named types, concatenates and de-duplicates
// their variants, and orders everything deterministically: types by
// name, variants with "this" keys first, then alphabetically by
// variant name.
func mergeTypes(types []manifest.TypeInfo) []manifest.TypeInfo {
	byName := make(map[string]*manifest.TypeInfo)
	var order []string
	for _, t := range types {
		info, ok := byName[t.TypeName]
		if !ok {
			order = append(order, t.TypeName)
			copied := manifest.TypeInfo{TypeName: t.TypeName}
			byName[t.TypeName] = &copied
			info = byName[t.TypeName]
		}
		info.Variants = append(info.Variants, t.Variants...)
	}

	sort.Strings(order)
	merged := make([]manifest.TypeInfo, 0, len(order))
	for _, name := range order {
		info := byName[name]
		info.Variants = dedupeVariants(info.Variants)
		sort.SliceStable(info.Variants, func(i, j int) bool {
			a, b := info.Variants[i], info.Variants[j]
			if a.IsThis() != b.IsThis() {
				return a.IsThis()
			}
			return a.Name < b.Name
		})
		merged = append(merged, *info)
	}
	return merged
}

func dedupeVariants(variants []manifest.Variant) []manifest.Variant {
	seen := make(map[string]struct{}, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if _, ok := seen[v.FTLKey]; ok {
			continue
		}
		seen[v.FTLKey] = struct{}{}
		out = append(out, v)
	}
	return out
}

// buildTarget renders the declared types into a fresh resource: one
// group comment per type followed by one message per variant.
func buildTarget(types []manifest.TypeInfo) *ast.Resource {
	var entries []ast.Node
	for _, t := range types {
		entries = append(entries, ftl.NewGroupComment(t.TypeName))
		for _, v := range t.Variants {
			entries = append(entries, ftl.NewMessage(v.FTLKey, variantText(v.FTLKey), v.Args))
		}
	}
	return ftl.NewResource(entries...)
}

var titleCaser = cases.Title(language.English)

// variantText derives the placeholder value for a generated key: the
// last "-" segment, "_this" suffix dropped, underscores as word breaks,
// title-cased. "usa_state_this" becomes "Usa State".
func variantText(key string) string {
	segment := key
	if i := strings.LastIndex(key, "-"); i >= 0 {
		segment = key[i+1:]
	}
	segment = strings.TrimSuffix(segment, "_this")
	return titleCaser.String(strings.ReplaceAll(segment, "_", " "))
}

// mergeResources walks the target resource and resolves each generated
// entry against the existing file according to the mode. Conservative
// appends every unconsumed existing entry afterwards; aggressive drops
// them.
func mergeResources(target, existing *ast.Resource, mode Mode) *ast.Resource {
	index := ftl.Index(existing)
	consumed := make(map[string]struct{})
	targetHeaders := make(map[string]struct{})

	var out []ast.Node
	for _, entry := range target.Body {
		if gc, ok := entry.(*ast.GroupComment); ok {
			targetHeaders[ftl.FoldKey(gc.Content)] = struct{}{}
			out = append(out, entry)
			continue
		}
		key, ok := ftl.EntryKey(entry)
		if !ok {
			out = append(out, entry)
			continue
		}
		if mode == Conservative {
			if current, found := index[key]; found {
				consumed[key] = struct{}{}
				out = append(out, current)
				continue
			}
		}
		out = append(out, entry)
	}

	if mode == Conservative {
		for _, entry := range existing.Body {
			if key, ok := ftl.EntryKey(entry); ok {
				if _, done := consumed[key]; done {
					continue
				}
				out = append(out, entry)
				continue
			}
			// Headers regenerated from declarations must not repeat.
			if gc, ok := entry.(*ast.GroupComment); ok {
				if _, dup := targetHeaders[ftl.FoldKey(gc.Content)]; dup {
					continue
				}
			}
			out = append(out, entry)
		}
	}

	return ftl.NewResource(out...)
}
