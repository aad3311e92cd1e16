package ecoguard_test

import (
	"errors"
	"go/ast"
	"testing"

	"github.com/farcloser/ecoguard"
)

const twoFunctions = `package sample

func first() {}

func second() int {
	return 1
}
`

var errBroken = errors.New("broken rule")

// fixedRule reports count issues on consecutive lines of every file.
func fixedRule(id string, category ecoguard.Category, severity ecoguard.Severity, count int) *ecoguard.FuncRule {
	info := ecoguard.RuleInfo{ID: id, Name: id, Category: category, Severity: severity}

	return ecoguard.NewFuncRule(info, func(rule *ecoguard.FuncRule, _ *ecoguard.Tree, _, path string) ([]ecoguard.Issue, error) {
		issues := make([]ecoguard.Issue, 0, count)
		for line := range count {
			issues = append(issues, rule.IssueAt(path, line+1, 0, "found by "+id))
		}

		return issues, nil
	})
}

func erroringRule(id string) *ecoguard.FuncRule {
	info := ecoguard.RuleInfo{ID: id, Category: ecoguard.CategoryQuality, Severity: ecoguard.SeverityError}

	return ecoguard.NewFuncRule(info, func(*ecoguard.FuncRule, *ecoguard.Tree, string, string) ([]ecoguard.Issue, error) {
		return nil, errBroken
	})
}

func panickingRule(id string) *ecoguard.FuncRule {
	info := ecoguard.RuleInfo{ID: id, Category: ecoguard.CategoryQuality, Severity: ecoguard.SeverityError}

	return ecoguard.NewFuncRule(info, func(*ecoguard.FuncRule, *ecoguard.Tree, string, string) ([]ecoguard.Issue, error) {
		panic("boom")
	})
}

// functionRule flags every function declaration.
func functionRule() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:       "function-found",
		Name:     "Function found",
		Category: ecoguard.CategoryQuality,
		Severity: ecoguard.SeverityInfo,
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		if fn, ok := node.(*ast.FuncDecl); ok {
			rule.AddIssue("Function found: "+fn.Name.Name, fn)
		}

		return true
	}))
}

func mustParse(t *testing.T, source string) *ecoguard.Tree {
	t.Helper()

	tree, err := ecoguard.ParseSource("sample.go", []byte(source))
	if err != nil {
		t.Fatalf("parsing sample: %v", err)
	}

	return tree
}

func issuesOf(category ecoguard.Category, severities ...ecoguard.Severity) []ecoguard.Issue {
	issues := make([]ecoguard.Issue, 0, len(severities))
	for idx, severity := range severities {
		issues = append(issues, ecoguard.NewIssue("rule", category, severity, "message", "file.go", idx+1))
	}

	return issues
}
