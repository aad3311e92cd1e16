// Package aicode implements rules for leftovers typical of generated code.
package aicode

import (
	"fmt"
	"go/ast"
	"go/token"
	"regexp"
	"strings"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/audit/shared"
)

const (
	PlaceholderCommentID  = "placeholder-comment"
	NotImplementedPanicID = "not-implemented-panic"
	SwallowedErrorID      = "swallowed-error"
)

//nolint:gochecknoglobals // configuration data, effectively const
var (
	placeholderComment = regexp.MustCompile(
		`(?i)(todo:?\s*implement|your (code|logic) (goes )?here|implementation goes here|` +
			`add (your )?(own )?logic here|rest of the (code|implementation)|placeholder implementation)`,
	)

	notImplemented = regexp.MustCompile(`(?i)(not (yet )?implemented|unimplemented|^todo\b)`)
)

// Rules returns fresh instances of every ai_code rule.
func Rules() []ecoguard.Rule {
	return []ecoguard.Rule{
		PlaceholderComment(),
		NotImplementedPanic(),
		SwallowedError(),
	}
}

func PlaceholderComment() *ecoguard.FuncRule {
	info := ecoguard.RuleInfo{
		ID:          PlaceholderCommentID,
		Name:        "Placeholder comment",
		Description: "Comment left where an implementation was expected",
		Category:    ecoguard.CategoryAICode,
		Severity:    ecoguard.SeverityInfo,
		Tags:        []string{"incomplete"},
	}

	return ecoguard.NewFuncRule(info, func(rule *ecoguard.FuncRule, tree *ecoguard.Tree, _, path string) ([]ecoguard.Issue, error) {
		var issues []ecoguard.Issue

		for _, group := range tree.File.Comments {
			for _, comment := range group.List {
				text := strings.TrimSpace(strings.Trim(comment.Text, "/*"))
				if !placeholderComment.MatchString(text) {
					continue
				}

				issue := rule.IssueForNode(tree, comment, path, "placeholder comment: "+text)
				issue.Impact = &ecoguard.Impact{Maintainability: 0.3}

				issues = append(issues, issue)
			}
		}

		return issues, nil
	})
}

func NotImplementedPanic() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          NotImplementedPanicID,
		Name:        "Not implemented panic",
		Description: "Stub that panics instead of doing the work",
		Category:    ecoguard.CategoryAICode,
		Severity:    ecoguard.SeverityWarning,
		Tags:        []string{"incomplete"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok || !shared.IsIdent(call.Fun, "panic") || len(call.Args) != 1 {
			return true
		}

		message, ok := shared.StringLiteral(call.Args[0])
		if ok && notImplemented.MatchString(strings.TrimSpace(message)) {
			issue := rule.NewIssue(fmt.Sprintf("stub panics with %q", message), call)
			issue.Fix = &ecoguard.Fix{
				Description: "Implement the function or return an error describing the missing support",
				Confidence:  0.5,
			}

			rule.Report(issue)
		}

		return true
	}))
}

func SwallowedError() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          SwallowedErrorID,
		Name:        "Swallowed error",
		Description: "Error checked and then silently ignored",
		Category:    ecoguard.CategoryAICode,
		Severity:    ecoguard.SeverityWarning,
		Tags:        []string{"error-handling"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		stmt, ok := node.(*ast.IfStmt)
		if !ok || !isErrNotNil(stmt.Cond) || !shared.EmptyBlock(rule.Tree().File, stmt.Body) {
			return true
		}

		issue := rule.NewIssue("error checked but ignored", stmt)
		issue.Impact = &ecoguard.Impact{Maintainability: 0.4, SecurityRisk: 0.2}
		issue.Fix = &ecoguard.Fix{
			Description:     "Return or log the error",
			ReplacementCode: "return err",
			Confidence:      0.6,
		}

		rule.Report(issue)

		return true
	}))
}

func isErrNotNil(cond ast.Expr) bool {
	binary, ok := cond.(*ast.BinaryExpr)
	if !ok || binary.Op != token.NEQ || !shared.IsIdent(binary.Y, "nil") {
		return false
	}

	ident, ok := binary.X.(*ast.Ident)

	return ok && (ident.Name == "err" || strings.HasSuffix(ident.Name, "Err"))
}
