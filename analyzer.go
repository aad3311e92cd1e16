package ecoguard

import (
	"fmt"
	"log/slog"
	"slices"
)

// RuleFailure records a rule that errored or panicked while checking a file.
type RuleFailure struct {
	RuleID string
	Err    error
}

// Analyzer is a named container of rules. Rules run in registration order.
//
// An Analyzer reuses its rule instances across files and is not safe for concurrent use.
type Analyzer struct {
	name        string
	description string
	disabled    bool

	rules  map[string]Rule
	order  []string
	logger *slog.Logger
}

// NewAnalyzer returns an enabled analyzer with no rules.
func NewAnalyzer(name, description string) *Analyzer {
	return &Analyzer{
		name:        name,
		description: description,
		rules:       make(map[string]Rule),
	}
}

// WithLogger sets the logger used to report rule failures (default: slog.Default()).
func (a *Analyzer) WithLogger(logger *slog.Logger) *Analyzer {
	a.logger = logger

	return a
}

func (a *Analyzer) Name() string {
	return a.name
}

func (a *Analyzer) Description() string {
	return a.description
}

func (a *Analyzer) Enabled() bool {
	return !a.disabled
}

func (a *Analyzer) SetEnabled(enabled bool) {
	a.disabled = !enabled
}

// RegisterRule adds rule, replacing any rule with the same id. A replaced rule keeps its position.
func (a *Analyzer) RegisterRule(rule Rule) {
	id := rule.Info().ID
	if _, exists := a.rules[id]; !exists {
		a.order = append(a.order, id)
	}

	a.rules[id] = rule
}

// EnableRule enables the rule with the given id. Unknown ids are ignored.
func (a *Analyzer) EnableRule(id string) {
	if rule, ok := a.rules[id]; ok {
		rule.SetEnabled(true)
	}
}

// DisableRule disables the rule with the given id. Unknown ids are ignored.
func (a *Analyzer) DisableRule(id string) {
	if rule, ok := a.rules[id]; ok {
		rule.SetEnabled(false)
	}
}

// Rule returns the rule registered under id.
func (a *Analyzer) Rule(id string) (Rule, bool) {
	rule, ok := a.rules[id]

	return rule, ok
}

// Rules returns every registered rule in registration order.
func (a *Analyzer) Rules() []Rule {
	out := make([]Rule, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.rules[id])
	}

	return out
}

// Analyze runs every enabled rule against one file and concatenates their issues in rule order.
// Failing rules contribute nothing and are logged.
func (a *Analyzer) Analyze(tree *Tree, source string, path string) []Issue {
	issues, _ := a.Check(tree, source, path)

	return issues
}

// Check is Analyze that also returns the rule failures it isolated.
func (a *Analyzer) Check(tree *Tree, source string, path string) ([]Issue, []RuleFailure) {
	var (
		issues   []Issue
		failures []RuleFailure
	)

	for _, id := range a.order {
		rule := a.rules[id]
		if !rule.Enabled() {
			continue
		}

		found, err := runRule(rule, tree, source, path)
		if err != nil {
			a.log().Warn("rule failed",
				"analyzer", a.name,
				"rule", id,
				"file", path,
				"error", err,
			)

			failures = append(failures, RuleFailure{RuleID: id, Err: err})

			continue
		}

		issues = append(issues, found...)
	}

	return issues, failures
}

func (a *Analyzer) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}

	return slog.Default()
}

func runRule(rule Rule, tree *Tree, source, path string) (issues []Issue, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			issues = nil
			err = fmt.Errorf("%w: %s: panic: %v", ErrRuleFailed, rule.Info().ID, recovered)
		}
	}()

	issues, err = rule.Check(tree, source, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRuleFailed, rule.Info().ID, err)
	}

	return slices.Clip(issues), nil
}
