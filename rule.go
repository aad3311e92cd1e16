package ecoguard

import (
	"go/ast"
	"go/token"
	"slices"
)

// Tree is a parsed source file.
type Tree struct {
	Fset *token.FileSet
	File *ast.File
}

// Position resolves pos to a 1-based line and a 0-based column.
func (t *Tree) Position(pos token.Pos) (int, int) {
	if t == nil || t.Fset == nil || !pos.IsValid() {
		return 1, 0
	}

	position := t.Fset.Position(pos)

	return position.Line, max(position.Column-1, 0)
}

// RuleInfo is the static description of a rule.
type RuleInfo struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Severity    Severity // default severity stamped on issues
	Tags        []string
}

// Rule inspects one file and reports issues.
//
// Returning an error or panicking is a rule failure: the owning Analyzer discards the
// rule's contribution for that file and carries on with the other rules.
type Rule interface {
	Info() RuleInfo
	Enabled() bool
	SetEnabled(enabled bool)
	Check(tree *Tree, source string, path string) ([]Issue, error)
}

// SeverityOverrider is implemented by rules whose default severity can be changed by configuration.
type SeverityOverrider interface {
	SetSeverity(severity Severity)
}

// BaseRule carries rule metadata and the enabled flag. Embed it to implement Rule.
type BaseRule struct {
	info     RuleInfo
	disabled bool
}

// NewBaseRule returns an enabled BaseRule.
func NewBaseRule(info RuleInfo) BaseRule {
	info.Tags = slices.Clone(info.Tags)

	return BaseRule{info: info}
}

func (r *BaseRule) Info() RuleInfo {
	return r.info
}

func (r *BaseRule) Enabled() bool {
	return !r.disabled
}

func (r *BaseRule) SetEnabled(enabled bool) {
	r.disabled = !enabled
}

func (r *BaseRule) SetSeverity(severity Severity) {
	r.info.Severity = severity
}

// IssueAt builds an issue stamped with the rule id, category, default severity and tags.
// A negative column means the column is unknown.
func (r *BaseRule) IssueAt(path string, line, column int, message string) Issue {
	issue := NewIssue(r.info.ID, r.info.Category, r.info.Severity, message, path, line)
	issue.Tags = slices.Clone(r.info.Tags)

	if column >= 0 {
		issue.Column = &column
	}

	return issue
}

// IssueForNode builds an issue located at node, including its end position.
func (r *BaseRule) IssueForNode(tree *Tree, node ast.Node, path, message string) Issue {
	line, column := tree.Position(node.Pos())
	issue := r.IssueAt(path, line, column, message)

	if end := node.End(); end.IsValid() && tree != nil && tree.Fset != nil {
		endLine, endColumn := tree.Position(end)
		issue.EndLine = &endLine
		issue.EndColumn = &endColumn
	}

	return issue
}

// CheckFunc is the body of a FuncRule.
type CheckFunc func(rule *FuncRule, tree *Tree, source string, path string) ([]Issue, error)

// FuncRule adapts a function into a Rule.
type FuncRule struct {
	BaseRule

	check CheckFunc
}

// NewFuncRule returns an enabled rule running check.
func NewFuncRule(info RuleInfo, check CheckFunc) *FuncRule {
	return &FuncRule{BaseRule: NewBaseRule(info), check: check}
}

func (r *FuncRule) Check(tree *Tree, source string, path string) ([]Issue, error) {
	return r.check(r, tree, source, path)
}
