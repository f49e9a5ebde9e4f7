package ftl

import "github.com/lus/fluent.go/fluent/parser/ast"

// Variables returns the set of variable names a pattern references,
// recursing through placeables, select expressions and call arguments.
func Variables(pattern *ast.Pattern) map[string]struct{} {
	set := make(map[string]struct{})
	collectPattern(pattern, set)
	return set
}

func collectPattern(pattern *ast.Pattern, set map[string]struct{}) {
	if pattern == nil {
		return
	}
	for _, element := range pattern.Elements {
		if placeable, ok := element.(*ast.Placeable); ok {
			collectExpression(placeable.Expression, set)
		}
	}
}

func collectExpression(node ast.Node, set map[string]struct{}) {
	switch expr := node.(type) {
	case *ast.VariableReference:
		set[expr.ID.Name] = struct{}{}
	case *ast.Placeable:
		collectExpression(expr.Expression, set)
	case *ast.SelectExpression:
		collectExpression(expr.Selector, set)
		for _, variant := range expr.Variants {
			collectPattern(variant.Value, set)
		}
	case *ast.FunctionReference:
		collectArguments(expr.Arguments, set)
	case *ast.TermReference:
		collectArguments(expr.Arguments, set)
	}
}

func collectArguments(args *ast.CallArguments, set map[string]struct{}) {
	if args == nil {
		return
	}
	for _, positional := range args.Positional {
		collectExpression(positional, set)
	}
	for _, named := range args.Named {
		collectExpression(named.Value, set)
	}
}
