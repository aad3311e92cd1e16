package ecoguard

import (
	"go/ast"
	"slices"
)

// Visitor is called for every node of the tree, depth-first, pre-order.
// Returning false skips the children of node.
type Visitor interface {
	Visit(node ast.Node, rule *VisitorRule) bool
}

// VisitorFunc adapts a function into a Visitor.
type VisitorFunc func(node ast.Node, rule *VisitorRule) bool

func (f VisitorFunc) Visit(node ast.Node, rule *VisitorRule) bool {
	return f(node, rule)
}

// Leaver is implemented by visitors that need to know when the walk leaves a node
// whose children were visited.
type Leaver interface {
	Leave(node ast.Node, rule *VisitorRule)
}

// Resetter is implemented by visitors that keep per-file state.
type Resetter interface {
	Reset()
}

// VisitorRule is a Rule that walks the whole tree and lets its Visitor report issues.
//
// It buffers issues and per-file context between Reset and the end of Check, so an
// instance must not be shared between goroutines.
type VisitorRule struct {
	BaseRule

	visitor Visitor

	tree   *Tree
	path   string
	source string
	stack  []ast.Node
	issues []Issue
}

// NewVisitorRule returns an enabled visitor rule.
func NewVisitorRule(info RuleInfo, visitor Visitor) *VisitorRule {
	return &VisitorRule{BaseRule: NewBaseRule(info), visitor: visitor}
}

// Reset clears the issue buffer and records the file about to be checked.
func (r *VisitorRule) Reset(path, source string) {
	r.path = path
	r.source = source
	r.tree = nil
	r.stack = r.stack[:0]
	r.issues = nil

	if resetter, ok := r.visitor.(Resetter); ok {
		resetter.Reset()
	}
}

// Path is the file currently being checked.
func (r *VisitorRule) Path() string {
	return r.path
}

// Source is the text of the file currently being checked.
func (r *VisitorRule) Source() string {
	return r.source
}

// Tree is the tree currently being walked.
func (r *VisitorRule) Tree() *Tree {
	return r.tree
}

// Ancestors returns the enclosing nodes of the node being visited, outermost first.
func (r *VisitorRule) Ancestors() []ast.Node {
	return r.stack
}

// Issues returns the issues reported so far for the current file.
func (r *VisitorRule) Issues() []Issue {
	return slices.Clone(r.issues)
}

// NewIssue builds an issue located at node without reporting it.
func (r *VisitorRule) NewIssue(message string, node ast.Node) Issue {
	return r.IssueForNode(r.tree, node, r.path, message)
}

// Report appends a fully built issue.
func (r *VisitorRule) Report(issue Issue) {
	r.issues = append(r.issues, issue)
}

// AddIssue reports an issue at node. The optional severity overrides the rule default.
func (r *VisitorRule) AddIssue(message string, node ast.Node, severity ...Severity) {
	issue := r.NewIssue(message, node)
	if len(severity) > 0 {
		issue.Severity = severity[0]
	}

	r.Report(issue)
}

// Check resets the rule, walks the tree and returns the collected issues.
func (r *VisitorRule) Check(tree *Tree, source string, path string) ([]Issue, error) {
	r.Reset(path, source)
	r.tree = tree

	if tree == nil || tree.File == nil {
		return nil, nil
	}

	leaver, _ := r.visitor.(Leaver)

	ast.Inspect(tree.File, func(node ast.Node) bool {
		if node == nil {
			last := r.stack[len(r.stack)-1]
			r.stack = r.stack[:len(r.stack)-1]

			if leaver != nil {
				leaver.Leave(last, r)
			}

			return false
		}

		if !r.visitor.Visit(node, r) {
			return false
		}

		r.stack = append(r.stack, node)

		return true
	})

	return slices.Clone(r.issues), nil
}
