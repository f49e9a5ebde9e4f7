package ftl

import (
	"strings"

	"github.com/lus/fluent.go/fluent/parser/ast"
)

const indentWidth = 4

// Serialize renders a resource back to canonical FTL text. Entries are
// separated by a single blank line and the output ends with exactly one
// trailing newline. An empty resource serializes to the empty string.
func Serialize(res *ast.Resource) string {
	var parts []string
	for _, entry := range res.Body {
		var b strings.Builder
		writeEntry(&b, entry)
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	out := strings.TrimRight(strings.Join(parts, "\n"), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// writeEntry renders one body entry. Nil nodes, including typed-nil
// pointers the parser can leak while recovering, are skipped.
func writeEntry(b *strings.Builder, entry ast.Node) {
	switch e := entry.(type) {
	case *ast.Comment:
		if e == nil {
			return
		}
		writeCommentLines(b, "#", e.Content)
	case *ast.GroupComment:
		if e == nil {
			return
		}
		writeCommentLines(b, "##", e.Content)
	case *ast.ResourceComment:
		if e == nil {
			return
		}
		writeCommentLines(b, "###", e.Content)
	case *ast.Message:
		if e == nil || e.ID == nil {
			return
		}
		if e.Comment != nil {
			writeCommentLines(b, "#", e.Comment.Content)
		}
		writeKeyed(b, e.ID.Name, e.Value, e.Attributes)
	case *ast.Term:
		if e == nil || e.ID == nil {
			return
		}
		if e.Comment != nil {
			writeCommentLines(b, "#", e.Comment.Content)
		}
		writeKeyed(b, "-"+e.ID.Name, e.Value, e.Attributes)
	case *ast.Junk:
		if e == nil {
			return
		}
		// Unparseable content round-trips verbatim.
		b.WriteString(strings.TrimRight(e.Content, "\n"))
		b.WriteByte('\n')
	}
}

func writeCommentLines(b *strings.Builder, prefix, content string) {
	for _, line := range strings.Split(content, "\n") {
		b.WriteString(prefix)
		if line != "" {
			b.WriteByte(' ')
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
}

func writeKeyed(b *strings.Builder, name string, value *ast.Pattern, attributes []*ast.Attribute) {
	b.WriteString(name)
	b.WriteString(" =")
	if value != nil {
		writePattern(b, value, indentWidth)
	}
	b.WriteByte('\n')
	for _, attr := range attributes {
		b.WriteString(pad(indentWidth))
		b.WriteByte('.')
		b.WriteString(attr.ID.Name)
		b.WriteString(" =")
		writePattern(b, attr.Value, 2*indentWidth)
		b.WriteByte('\n')
	}
}

// writePattern writes either " value" on the current line or a block
// starting on the next line, indented. Block form is used whenever the
// pattern spans lines or contains a select expression, so reparsing
// yields the same structure.
func writePattern(b *strings.Builder, pattern *ast.Pattern, indent int) {
	text := patternText(pattern, indent)
	if isBlockPattern(pattern) {
		b.WriteByte('\n')
		b.WriteString(pad(indent))
		b.WriteString(text)
	} else {
		b.WriteByte(' ')
		b.WriteString(text)
	}
}

func isBlockPattern(pattern *ast.Pattern) bool {
	if pattern == nil {
		return false
	}
	for _, element := range pattern.Elements {
		switch e := element.(type) {
		case *ast.Text:
			if strings.Contains(e.Value, "\n") {
				return true
			}
		case *ast.Placeable:
			if _, ok := e.Expression.(*ast.SelectExpression); ok {
				return true
			}
		}
	}
	return false
}

func patternText(pattern *ast.Pattern, indent int) string {
	var sb strings.Builder
	for _, element := range pattern.Elements {
		switch e := element.(type) {
		case *ast.Text:
			sb.WriteString(strings.ReplaceAll(e.Value, "\n", "\n"+pad(indent)))
		case *ast.Placeable:
			sb.WriteString(placeableText(e, indent))
		}
	}
	return sb.String()
}

func placeableText(placeable *ast.Placeable, indent int) string {
	if sel, ok := placeable.Expression.(*ast.SelectExpression); ok {
		return selectText(sel, indent)
	}
	if inner, ok := placeable.Expression.(*ast.Placeable); ok {
		return "{ " + placeableText(inner, indent) + " }"
	}
	return "{ " + inlineText(placeable.Expression) + " }"
}

func selectText(sel *ast.SelectExpression, indent int) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	sb.WriteString(inlineText(sel.Selector))
	sb.WriteString(" ->\n")
	for _, variant := range sel.Variants {
		if variant.Default {
			sb.WriteString(pad(indent + 3))
			sb.WriteByte('*')
		} else {
			sb.WriteString(pad(indent + 4))
		}
		sb.WriteByte('[')
		sb.WriteString(variantKeyText(variant.Key))
		sb.WriteByte(']')
		if isBlockPattern(variant.Value) {
			sb.WriteByte('\n')
			sb.WriteString(pad(indent + 2*indentWidth))
			sb.WriteString(patternText(variant.Value, indent+2*indentWidth))
		} else {
			sb.WriteByte(' ')
			sb.WriteString(patternText(variant.Value, indent+indentWidth))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(pad(indent))
	sb.WriteByte('}')
	return sb.String()
}

func variantKeyText(key ast.Node) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.NumberLiteral:
		return k.Value
	}
	return ""
}

func inlineText(node ast.Node) string {
	switch expr := node.(type) {
	case *ast.VariableReference:
		return "$" + expr.ID.Name
	case *ast.MessageReference:
		if expr.Attribute != nil {
			return expr.ID.Name + "." + expr.Attribute.Name
		}
		return expr.ID.Name
	case *ast.TermReference:
		out := "-" + expr.ID.Name
		if expr.Attribute != nil {
			out += "." + expr.Attribute.Name
		}
		if expr.Arguments != nil {
			out += callArgumentsText(expr.Arguments)
		}
		return out
	case *ast.FunctionReference:
		return expr.ID.Name + callArgumentsText(expr.Arguments)
	case *ast.StringLiteral:
		return `"` + expr.Value + `"`
	case *ast.NumberLiteral:
		return expr.Value
	case *ast.Placeable:
		return placeableText(expr, 0)
	}
	return ""
}

func callArgumentsText(args *ast.CallArguments) string {
	if args == nil {
		return "()"
	}
	parts := make([]string, 0, len(args.Positional)+len(args.Named))
	for _, positional := range args.Positional {
		parts = append(parts, inlineText(positional))
	}
	for _, named := range args.Named {
		parts = append(parts, named.Name.Name+": "+inlineText(named.Value))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func pad(width int) string {
	return strings.Repeat(" ", width)
}
