// Package green implements rules flagging avoidable CPU and memory work.
package green

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/audit/shared"
)

const (
	StringConcatInLoopID  = "string-concat-in-loop"
	RegexpCompileInLoopID = "regexp-compile-in-loop"
	DeferInLoopID         = "defer-in-loop"
)

// Rules returns fresh instances of every green rule.
func Rules() []ecoguard.Rule {
	return []ecoguard.Rule{
		StringConcatInLoop(),
		RegexpCompileInLoop(),
		DeferInLoop(),
	}
}

func StringConcatInLoop() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          StringConcatInLoopID,
		Name:        "String concatenation in loop",
		Description: "Repeated += on strings reallocates and copies on every iteration",
		Category:    ecoguard.CategoryGreen,
		Severity:    ecoguard.SeverityWarning,
		Tags:        []string{"allocation"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		assign, ok := node.(*ast.AssignStmt)
		if !ok || assign.Tok != token.ADD_ASSIGN || len(assign.Rhs) != 1 {
			return true
		}

		if shared.ContainsStringLiteral(assign.Rhs[0]) && shared.InLoopBody(rule.Ancestors(), assign) {
			issue := rule.NewIssue("string built with += inside a loop", assign)
			issue.Impact = &ecoguard.Impact{Performance: 0.5, CarbonImpact: 0.4}
			issue.Fix = &ecoguard.Fix{
				Description: "Accumulate into a strings.Builder and call String() once",
				Confidence:  0.8,
			}

			rule.Report(issue)
		}

		return true
	}))
}

func RegexpCompileInLoop() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          RegexpCompileInLoopID,
		Name:        "Regexp compiled in loop",
		Description: "Compiling the same pattern on every iteration wastes CPU",
		Category:    ecoguard.CategoryGreen,
		Severity:    ecoguard.SeverityError,
		Tags:        []string{"cpu"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}

		pkg, name := shared.CallName(call)
		if pkg != "regexp" {
			return true
		}

		switch name {
		case "Compile", "MustCompile", "CompilePOSIX", "MustCompilePOSIX":
		default:
			return true
		}

		if shared.InLoopBody(rule.Ancestors(), call) {
			issue := rule.NewIssue(fmt.Sprintf("regexp.%s called inside a loop", name), call)
			issue.Impact = &ecoguard.Impact{Performance: 0.7, CarbonImpact: 0.6}
			issue.Fix = &ecoguard.Fix{
				Description: "Compile the pattern once, outside the loop or at package level",
				Confidence:  0.9,
			}

			rule.Report(issue)
		}

		return true
	}))
}

func DeferInLoop() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          DeferInLoopID,
		Name:        "Defer in loop",
		Description: "Deferred calls pile up until the function returns, holding resources",
		Category:    ecoguard.CategoryGreen,
		Severity:    ecoguard.SeverityInfo,
		Tags:        []string{"resources"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		stmt, ok := node.(*ast.DeferStmt)
		if !ok {
			return true
		}

		if shared.InLoopBody(rule.Ancestors(), stmt) {
			issue := rule.NewIssue("defer inside a loop runs only when the function returns", stmt)
			issue.Impact = &ecoguard.Impact{Performance: 0.2, CarbonImpact: 0.1}
			issue.Fix = &ecoguard.Fix{
				Description: "Move the loop body into a function so each defer runs per iteration",
				Confidence:  0.7,
			}

			rule.Report(issue)
		}

		return true
	}))
}
