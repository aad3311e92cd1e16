// Package quality implements maintainability rules.
package quality

import (
	"fmt"
	"go/ast"
	"strings"
	"unicode/utf8"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/audit/shared"
)

const (
	LongLineID      = "long-line"
	TooManyParamsID = "too-many-params"
	DeepNestingID   = "deep-nesting"
	EmptyBlockID    = "empty-block"
)

// Rules returns fresh instances of every quality rule.
func Rules() []ecoguard.Rule {
	return []ecoguard.Rule{
		LongLine(),
		TooManyParams(),
		DeepNesting(),
		EmptyBlock(),
	}
}

func LongLine() *ecoguard.FuncRule {
	info := ecoguard.RuleInfo{
		ID:          LongLineID,
		Name:        "Long line",
		Description: fmt.Sprintf("Lines longer than %d characters are hard to read and review", shared.MaxLineLength),
		Category:    ecoguard.CategoryQuality,
		Severity:    ecoguard.SeverityInfo,
		Tags:        []string{"readability"},
	}

	return ecoguard.NewFuncRule(info, func(rule *ecoguard.FuncRule, _ *ecoguard.Tree, source, path string) ([]ecoguard.Issue, error) {
		var issues []ecoguard.Issue

		for idx, line := range strings.Split(source, "\n") {
			length := utf8.RuneCountInString(strings.TrimRight(line, "\r"))
			if length <= shared.MaxLineLength {
				continue
			}

			issue := rule.IssueAt(path, idx+1, shared.MaxLineLength,
				fmt.Sprintf("line is %d characters long (max %d)", length, shared.MaxLineLength))
			issue.Impact = &ecoguard.Impact{Maintainability: 0.2}

			issues = append(issues, issue)
		}

		return issues, nil
	})
}

func TooManyParams() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          TooManyParamsID,
		Name:        "Too many parameters",
		Description: fmt.Sprintf("Functions taking more than %d parameters should take a struct", shared.MaxParameters),
		Category:    ecoguard.CategoryQuality,
		Severity:    ecoguard.SeverityWarning,
		Tags:        []string{"design"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		decl, ok := node.(*ast.FuncDecl)
		if !ok {
			return true
		}

		count := 0

		for _, field := range decl.Type.Params.List {
			count += max(len(field.Names), 1)
		}

		if count > shared.MaxParameters {
			issue := rule.NewIssue(
				fmt.Sprintf("function %s takes %d parameters (max %d)", decl.Name.Name, count, shared.MaxParameters),
				decl.Name,
			)
			issue.Impact = &ecoguard.Impact{Maintainability: 0.5}
			issue.Fix = &ecoguard.Fix{
				Description: "Group related parameters into an options struct",
				Confidence:  0.6,
			}

			rule.Report(issue)
		}

		return true
	}))
}

func DeepNesting() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          DeepNestingID,
		Name:        "Deep nesting",
		Description: fmt.Sprintf("Control flow nested more than %d levels deep", shared.MaxNesting),
		Category:    ecoguard.CategoryQuality,
		Severity:    ecoguard.SeverityWarning,
		Tags:        []string{"complexity"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		if !isControl(node) {
			return true
		}

		// Only the statement crossing the limit is reported, not everything below it.
		if depth := nestingDepth(rule.Ancestors(), node); depth == shared.MaxNesting+1 {
			issue := rule.NewIssue(
				fmt.Sprintf("control flow nested %d levels deep (max %d)", depth, shared.MaxNesting),
				node,
			)
			issue.Impact = &ecoguard.Impact{Maintainability: 0.6}
			issue.Fix = &ecoguard.Fix{
				Description: "Return early or extract the inner block into a function",
				Confidence:  0.5,
			}

			rule.Report(issue)
		}

		return true
	}))
}

func isControl(node ast.Node) bool {
	switch node.(type) {
	case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
		return true
	}

	return false
}

// nestingDepth counts the control statements enclosing node, node included, within its function.
// An else-if chain counts as a single level.
func nestingDepth(ancestors []ast.Node, node ast.Node) int {
	depth := 1
	child := node

	for idx := len(ancestors) - 1; idx >= 0; idx-- {
		parent := ancestors[idx]

		switch typed := parent.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			return depth
		case *ast.IfStmt:
			if child != typed.Else {
				depth++
			}
		default:
			if isControl(parent) {
				depth++
			}
		}

		child = parent
	}

	return depth
}

func EmptyBlock() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          EmptyBlockID,
		Name:        "Empty block",
		Description: "An if, else or loop body with no statements and no explanatory comment",
		Category:    ecoguard.CategoryQuality,
		Severity:    ecoguard.SeverityInfo,
		Tags:        []string{"dead-code"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		file := rule.Tree().File

		switch stmt := node.(type) {
		case *ast.IfStmt:
			if shared.EmptyBlock(file, stmt.Body) {
				rule.AddIssue("empty if branch", stmt.Body)
			}

			if block, ok := stmt.Else.(*ast.BlockStmt); ok && shared.EmptyBlock(file, block) {
				rule.AddIssue("empty else branch", block)
			}
		case *ast.ForStmt:
			if shared.EmptyBlock(file, stmt.Body) {
				rule.AddIssue("empty loop body", stmt.Body)
			}
		case *ast.RangeStmt:
			if shared.EmptyBlock(file, stmt.Body) {
				rule.AddIssue("empty loop body", stmt.Body)
			}
		}

		return true
	}))
}
