// Package format canonicalizes resource ordering: alphabetical sections
// with heuristic regrouping of mis-filed messages and "this"-key
// priority. Formatting is idempotent; running it twice produces the
// same bytes.
package format

import (
	"os"
	"sort"
	"strings"

	"github.com/lus/fluent.go/fluent/parser/ast"

	"github.com/roach88/fluentctl/internal/ftl"
)

// section is a group-comment-anchored slice of the resource. The
// implicit leading section has no header and an empty matcher.
type section struct {
	header  *ast.GroupComment
	matcher string
	loose   []ast.Node // standalone comments and junk, kept in arrival order
	keyed   []ast.Node
}

// Resource returns a canonically ordered copy of res. Entry nodes are
// shared with the input; only the body order is new.
func Resource(res *ast.Resource) *ast.Resource {
	sections := splitSections(res)
	rematch(sections)

	// Header-less section first, the rest by header text.
	sort.SliceStable(sections, func(i, j int) bool {
		if (sections[i].header == nil) != (sections[j].header == nil) {
			return sections[i].header == nil
		}
		if sections[i].header == nil {
			return false
		}
		return sections[i].header.Content < sections[j].header.Content
	})

	var body []ast.Node
	for _, sec := range sections {
		sortKeyed(sec.keyed)
		if sec.header != nil {
			body = append(body, sec.header)
		}
		body = append(body, sec.loose...)
		body = append(body, sec.keyed...)
	}
	return ftl.NewResource(body...)
}

// Source formats FTL text. Parse errors are tolerated: junk entries
// ride along verbatim inside their section.
func Source(src string) string {
	res, _ := ftl.Parse(src)
	return ftl.Serialize(Resource(res))
}

// File rewrites path in canonical form, reporting whether the content
// changed. With checkOnly the file is left untouched and only the
// would-change signal is returned.
func File(path string, checkOnly bool) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	formatted := Source(string(raw))
	if formatted == string(raw) {
		return false, nil
	}
	if checkOnly {
		return true, nil
	}
	return true, os.WriteFile(path, []byte(formatted), 0o644)
}

func splitSections(res *ast.Resource) []*section {
	sections := []*section{{}}
	current := sections[0]
	for _, entry := range res.Body {
		switch e := entry.(type) {
		case *ast.GroupComment:
			current = &section{header: e, matcher: ftl.FoldKey(e.Content)}
			sections = append(sections, current)
		case *ast.ResourceComment:
			// File-level comments belong to no section; they stay at
			// the very top.
			sections[0].loose = append(sections[0].loose, entry)
		default:
			if _, ok := ftl.EntryKey(entry); ok {
				current.keyed = append(current.keyed, entry)
			} else {
				current.loose = append(current.loose, entry)
			}
		}
	}
	return sections
}

// rematch moves each keyed entry into the section whose folded header
// is the longest prefix of the entry's folded key. Entries with no
// matching section stay where they were. Attached leading comments
// travel inside the entry node.
func rematch(sections []*section) {
	type placed struct {
		entry  ast.Node
		origin int
	}
	var entries []placed
	for i, sec := range sections {
		for _, entry := range sec.keyed {
			entries = append(entries, placed{entry: entry, origin: i})
		}
		sec.keyed = nil
	}

	for _, p := range entries {
		key, _ := ftl.EntryKey(p.entry)
		folded := ftl.FoldKey(key)

		best := p.origin
		bestLen := -1
		for i, sec := range sections {
			if sec.matcher == "" {
				continue
			}
			if strings.HasPrefix(folded, sec.matcher) && len(sec.matcher) > bestLen {
				best = i
				bestLen = len(sec.matcher)
			}
		}
		sections[best].keyed = append(sections[best].keyed, p.entry)
	}
}

func sortKeyed(entries []ast.Node) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, _ := ftl.EntryKey(entries[i])
		b, _ := ftl.EntryKey(entries[j])
		if isThisKey(a) != isThisKey(b) {
			return isThisKey(a)
		}
		return a < b
	})
}

// isThisKey reports whether key is a type-level entry, which sorts
// before its sibling variant keys.
func isThisKey(key string) bool {
	return key == "this" || strings.HasSuffix(key, "_this")
}
