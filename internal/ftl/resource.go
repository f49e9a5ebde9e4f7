package ftl

import (
	"os"
	"strings"

	"github.com/lus/fluent.go/fluent/parser"
	"github.com/lus/fluent.go/fluent/parser/ast"
)

// Parse parses FTL source into an AST together with any parse errors.
// The AST is always usable: entries that failed to parse are present as
// Junk nodes and the errors describe them, so callers degrade to the
// partial result instead of failing.
//
// The underlying parser reports broken regions only through its error
// list and omits them from the body, so the junk entries are
// reconstructed here from span coverage and spliced back in document
// order.
func Parse(source string) (*ast.Resource, []*parser.Error) {
	res, errs := parser.New(source).Parse()
	res.Body = spliceJunk(res.Body, source)
	return res, errs
}

// spliceJunk restores the unparseable regions of source as Junk
// entries: any non-blank text not covered by a parsed entry's span is
// junk, kept verbatim between its neighbors. Entries the parser leaked
// as typed-nil nodes during recovery are dropped; the text they stood
// for falls into a gap and survives as junk too.
func spliceJunk(body []ast.Node, source string) []ast.Node {
	// Parser spans are rune offsets.
	runes := []rune(source)
	out := make([]ast.Node, 0, len(body))
	cursor := 0
	for _, entry := range body {
		span, ok := entrySpan(entry)
		if !ok {
			continue
		}
		out = appendJunk(out, runes, cursor, int(span[0]))
		out = append(out, entry)
		if int(span[1]) > cursor {
			cursor = int(span[1])
		}
	}
	return appendJunk(out, runes, cursor, len(runes))
}

// entrySpan returns the source span of a parsed entry. It reports false
// for nil nodes, including non-nil interfaces wrapping nil pointers.
func entrySpan(entry ast.Node) ([2]uint, bool) {
	switch e := entry.(type) {
	case *ast.Message:
		if e == nil || e.ID == nil {
			return [2]uint{}, false
		}
		return e.Span, true
	case *ast.Term:
		if e == nil || e.ID == nil {
			return [2]uint{}, false
		}
		return e.Span, true
	case *ast.Comment:
		if e == nil {
			return [2]uint{}, false
		}
		return e.Span, true
	case *ast.GroupComment:
		if e == nil {
			return [2]uint{}, false
		}
		return e.Span, true
	case *ast.ResourceComment:
		if e == nil {
			return [2]uint{}, false
		}
		return e.Span, true
	case *ast.Junk:
		if e == nil {
			return [2]uint{}, false
		}
		return e.Span, true
	}
	return [2]uint{}, false
}

// appendJunk turns the non-blank core of runes[from:to] into one Junk
// entry, trimming the surrounding blank lines that merely separate
// entries.
func appendJunk(out []ast.Node, runes []rune, from, to int) []ast.Node {
	if to > len(runes) {
		to = len(runes)
	}
	start, end := from, to
	for start < end {
		lineEnd := start
		for lineEnd < end && runes[lineEnd] != '\n' {
			lineEnd++
		}
		if strings.TrimSpace(string(runes[start:lineEnd])) != "" {
			break
		}
		start = lineEnd + 1
	}
	for end > start {
		lineStart := end
		for lineStart > start && runes[lineStart-1] != '\n' {
			lineStart--
		}
		if strings.TrimSpace(string(runes[lineStart:end])) != "" {
			break
		}
		end = lineStart
		if end > start && runes[end-1] == '\n' {
			end--
		}
	}
	if start >= end {
		return out
	}
	return append(out, &ast.Junk{
		Base: ast.Base{
			Type: ast.TypeJunk,
			Span: [2]uint{uint(start), uint(end)},
		},
		Content: string(runes[start:end]) + "\n",
	})
}

// ParseFile reads and parses the FTL file at path. A missing file yields
// an empty resource with no error; any other read failure is returned.
func ParseFile(path string) (*ast.Resource, []*parser.Error, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return EmptyResource(), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	res, parseErrs := Parse(string(raw))
	return res, parseErrs, nil
}

// EmptyResource returns a resource with no entries.
func EmptyResource() *ast.Resource {
	return &ast.Resource{Base: ast.Base{Type: ast.TypeResource}}
}

// NewResource builds a resource from the given entries, in order.
func NewResource(entries ...ast.Node) *ast.Resource {
	res := EmptyResource()
	res.Body = entries
	return res
}

// EntryKey returns the unique key of a message or term entry. Term keys
// carry a leading "-" so both kinds share one namespace. The second
// return value is false for comments and junk.
func EntryKey(entry ast.Node) (string, bool) {
	switch e := entry.(type) {
	case *ast.Message:
		if e == nil || e.ID == nil {
			return "", false
		}
		return e.ID.Name, true
	case *ast.Term:
		if e == nil || e.ID == nil {
			return "", false
		}
		return "-" + e.ID.Name, true
	}
	return "", false
}

// Keys lists the message and term keys of a resource in body order.
func Keys(res *ast.Resource) []string {
	var keys []string
	for _, entry := range res.Body {
		if key, ok := EntryKey(entry); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// KeySet returns the message and term keys of a resource as a set.
func KeySet(res *ast.Resource) map[string]struct{} {
	set := make(map[string]struct{})
	for _, key := range Keys(res) {
		set[key] = struct{}{}
	}
	return set
}

// Index maps every keyed entry of a resource by its key. Later entries
// win on duplicate keys, matching last-write merge semantics.
func Index(res *ast.Resource) map[string]ast.Node {
	index := make(map[string]ast.Node)
	for _, entry := range res.Body {
		if key, ok := EntryKey(entry); ok {
			index[key] = entry
		}
	}
	return index
}

// KeyVariables returns key -> referenced variable set for every message
// and term in the resource, including attribute patterns.
func KeyVariables(res *ast.Resource) map[string]map[string]struct{} {
	vars := make(map[string]map[string]struct{})
	for _, entry := range res.Body {
		key, ok := EntryKey(entry)
		if !ok {
			continue
		}
		set := make(map[string]struct{})
		switch e := entry.(type) {
		case *ast.Message:
			collectPattern(e.Value, set)
			for _, attr := range e.Attributes {
				collectPattern(attr.Value, set)
			}
		case *ast.Term:
			collectPattern(e.Value, set)
			for _, attr := range e.Attributes {
				collectPattern(attr.Value, set)
			}
		}
		vars[key] = set
	}
	return vars
}

// NewMessage builds a message entry with a text value followed by one
// variable placeable per argument, space-separated.
func NewMessage(key, text string, args []string) *ast.Message {
	elements := []ast.Node{
		&ast.Text{Base: ast.Base{Type: ast.TypeText}, Value: text},
	}
	for _, arg := range args {
		elements = append(elements,
			&ast.Text{Base: ast.Base{Type: ast.TypeText}, Value: " "},
			&ast.Placeable{
				Base: ast.Base{Type: ast.TypePlaceable},
				Expression: &ast.VariableReference{
					Base: ast.Base{Type: ast.TypeVariableReference},
					ID:   &ast.Identifier{Base: ast.Base{Type: ast.TypeIdentifier}, Name: arg},
				},
			})
	}
	return &ast.Message{
		Base:  ast.Base{Type: ast.TypeMessage},
		ID:    &ast.Identifier{Base: ast.Base{Type: ast.TypeIdentifier}, Name: key},
		Value: &ast.Pattern{Base: ast.Base{Type: ast.TypePattern}, Elements: elements},
	}
}

// FoldKey lowercases s and strips every non-alphanumeric rune. Section
// headers and message keys are compared in this folded form so that
// "## USAState" matches keys like "usa_state-alabama".
func FoldKey(s string) string {
	var b []rune
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, r)
		case r >= 'A' && r <= 'Z':
			b = append(b, r+('a'-'A'))
		}
	}
	return string(b)
}

// NewGroupComment builds a section header comment.
func NewGroupComment(content string) *ast.GroupComment {
	return &ast.GroupComment{Base: ast.Base{Type: ast.TypeGroupComment}, Content: content}
}

// NewComment builds a standalone single-# comment.
func NewComment(content string) *ast.Comment {
	return &ast.Comment{Base: ast.Base{Type: ast.TypeComment}, Content: content}
}
