// Package shared holds thresholds and syntax tree helpers used by the rule packages.
package shared

import (
	"go/ast"
	"go/token"
	"strconv"
)

// InLoopBody reports whether node executes once per iteration of an enclosing loop.
// The search stops at the nearest function boundary. ancestors is outermost first.
func InLoopBody(ancestors []ast.Node, node ast.Node) bool {
	child := node

	for idx := len(ancestors) - 1; idx >= 0; idx-- {
		switch parent := ancestors[idx].(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			return false
		case *ast.ForStmt:
			if child != parent.Init {
				return true
			}
		case *ast.RangeStmt:
			if child == parent.Body {
				return true
			}
		}

		child = ancestors[idx]
	}

	return false
}

// CallName splits a call like pkg.Func(...) into ("pkg", "Func"). Plain calls return ("", "Func").
func CallName(call *ast.CallExpr) (string, string) {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return "", fun.Name
	case *ast.SelectorExpr:
		if pkg, ok := fun.X.(*ast.Ident); ok {
			return pkg.Name, fun.Sel.Name
		}

		return "", fun.Sel.Name
	}

	return "", ""
}

// StringLiteral returns the unquoted value of a string literal expression.
func StringLiteral(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}

	value, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}

	return value, true
}

// ContainsStringLiteral reports whether expr is, or is built by concatenating, a string literal.
func ContainsStringLiteral(expr ast.Expr) bool {
	switch typed := expr.(type) {
	case *ast.BasicLit:
		return typed.Kind == token.STRING
	case *ast.BinaryExpr:
		return typed.Op == token.ADD && (ContainsStringLiteral(typed.X) || ContainsStringLiteral(typed.Y))
	case *ast.ParenExpr:
		return ContainsStringLiteral(typed.X)
	}

	return false
}

// IsIdent reports whether expr is the identifier name.
func IsIdent(expr ast.Expr, name string) bool {
	ident, ok := expr.(*ast.Ident)

	return ok && ident.Name == name
}

// EmptyBlock reports whether block has no statements and no comments inside its braces.
func EmptyBlock(file *ast.File, block *ast.BlockStmt) bool {
	if block == nil || len(block.List) > 0 {
		return false
	}

	for _, group := range file.Comments {
		if group.Pos() > block.Lbrace && group.End() <= block.Rbrace {
			return false
		}
	}

	return true
}
