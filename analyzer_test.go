package ecoguard_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/farcloser/ecoguard"
)

func TestAnalyzerIsolatesFailingRules(t *testing.T) {
	tests := []struct {
		name    string
		failing ecoguard.Rule
	}{
		{"error", erroringRule("broken")},
		{"panic", panickingRule("broken")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer

			analyzer := ecoguard.NewAnalyzer("test", "test analyzer").
				WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
			analyzer.RegisterRule(tt.failing)
			analyzer.RegisterRule(fixedRule("healthy", ecoguard.CategoryQuality, ecoguard.SeverityInfo, 2))

			tree := mustParse(t, twoFunctions)

			issues := analyzer.Analyze(tree, twoFunctions, "sample.go")
			if len(issues) != 2 {
				t.Fatalf("expected the healthy rule's 2 issues, got %d", len(issues))
			}

			for _, issue := range issues {
				if issue.RuleID != "healthy" {
					t.Errorf("unexpected issue from %q", issue.RuleID)
				}
			}

			_, failures := analyzer.Check(tree, twoFunctions, "sample.go")
			if len(failures) != 1 || failures[0].RuleID != "broken" {
				t.Fatalf("expected one recorded failure, got %+v", failures)
			}

			if !errors.Is(failures[0].Err, ecoguard.ErrRuleFailed) {
				t.Errorf("failure should wrap ErrRuleFailed: %v", failures[0].Err)
			}

			if !strings.Contains(logs.String(), "rule=broken") {
				t.Errorf("failure was not logged: %s", logs.String())
			}
		})
	}
}

func TestAnalyzerEnableDisable(t *testing.T) {
	analyzer := ecoguard.NewAnalyzer("test", "")
	analyzer.RegisterRule(fixedRule("a", ecoguard.CategoryQuality, ecoguard.SeverityInfo, 1))
	analyzer.RegisterRule(fixedRule("b", ecoguard.CategoryQuality, ecoguard.SeverityInfo, 3))

	tree := mustParse(t, twoFunctions)

	count := func() int { return len(analyzer.Analyze(tree, twoFunctions, "sample.go")) }

	if got := count(); got != 4 {
		t.Fatalf("expected 4 issues, got %d", got)
	}

	analyzer.DisableRule("b")
	analyzer.DisableRule("b")

	if got := count(); got != 1 {
		t.Errorf("disabled rule still reported: got %d issues", got)
	}

	analyzer.EnableRule("b")

	if got := count(); got != 4 {
		t.Errorf("re-enabled rule should report again: got %d issues", got)
	}

	analyzer.DisableRule("unknown")
	analyzer.EnableRule("unknown")

	if got := count(); got != 4 {
		t.Errorf("unknown ids must be ignored: got %d issues", got)
	}
}

func TestAnalyzerRegistrationOrder(t *testing.T) {
	analyzer := ecoguard.NewAnalyzer("test", "")
	analyzer.RegisterRule(fixedRule("first", ecoguard.CategoryQuality, ecoguard.SeverityInfo, 1))
	analyzer.RegisterRule(fixedRule("second", ecoguard.CategoryQuality, ecoguard.SeverityInfo, 1))
	analyzer.RegisterRule(fixedRule("first", ecoguard.CategoryQuality, ecoguard.SeverityError, 2))

	rules := analyzer.Rules()
	if len(rules) != 2 {
		t.Fatalf("re-registering must overwrite, got %d rules", len(rules))
	}

	if rules[0].Info().ID != "first" || rules[0].Info().Severity != ecoguard.SeverityError {
		t.Errorf("the replacement should keep the original position: %+v", rules[0].Info())
	}

	issues := analyzer.Analyze(mustParse(t, twoFunctions), twoFunctions, "sample.go")

	got := make([]string, 0, len(issues))
	for _, issue := range issues {
		got = append(got, issue.RuleID)
	}

	if strings.Join(got, ",") != "first,first,second" {
		t.Errorf("issues not in rule order: %v", got)
	}

	if _, ok := analyzer.Rule("second"); !ok {
		t.Error("registered rule not found")
	}
}

func TestDisabledAnalyzerIsSkipped(t *testing.T) {
	analyzer := ecoguard.NewAnalyzer("test", "")
	analyzer.RegisterRule(fixedRule("a", ecoguard.CategoryQuality, ecoguard.SeverityInfo, 1))
	analyzer.SetEnabled(false)

	result := ecoguard.AnalyzeSource("sample.go", []byte(twoFunctions), []*ecoguard.Analyzer{analyzer})
	if result.IssueCount() != 0 {
		t.Errorf("disabled analyzer reported %d issues", result.IssueCount())
	}
}
