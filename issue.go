package ecoguard

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"time"
)

// Impact estimates the effect of an issue along five dimensions. Purely descriptive.
type Impact struct {
	Performance     float64
	SecurityRisk    float64
	CarbonImpact    float64
	Maintainability float64
	CostImpact      float64
}

// Fix describes a suggested remediation. It is never applied by the engine.
type Fix struct {
	Description     string
	ReplacementCode string  // empty when not provided
	CanAutoFix      bool    // default false
	Confidence      float64 // 0.0-1.0
	Instructions    string  // empty when not provided
}

// Issue is a single finding produced by a rule. Issues are built once by a rule and never mutated.
type Issue struct {
	RuleID   string
	Category Category
	Severity Severity
	Message  string
	FilePath string

	Line      int  // 1-based
	Column    *int // 0-based, nil when unknown
	EndLine   *int
	EndColumn *int

	Impact *Impact
	Fix    *Fix

	Tags      []string // ordered, duplicates allowed
	CreatedAt time.Time
	Metadata  map[string]any
}

// NewIssue returns an issue stamped with the current time. Lines below 1 are clamped to 1.
func NewIssue(ruleID string, category Category, severity Severity, message, filePath string, line int) Issue {
	return Issue{
		RuleID:    ruleID,
		Category:  category,
		Severity:  severity,
		Message:   message,
		FilePath:  filePath,
		Line:      max(line, 1),
		CreatedAt: time.Now(),
	}
}

// SeverityScore returns the numeric score of the issue severity.
func (i Issue) SeverityScore() int {
	return i.Severity.Score()
}

// String renders the issue as "<file>:<line>:<column>: <severity>: <message> [<rule_id>]".
// The column part is omitted when the column is unknown.
func (i Issue) String() string {
	location := i.FilePath + ":" + strconv.Itoa(i.Line)
	if i.Column != nil {
		location += ":" + strconv.Itoa(*i.Column)
	}

	return fmt.Sprintf("%s: %s: %s [%s]", location, i.Severity, i.Message, i.RuleID)
}

// Equal reports whether two issues carry identical values.
func (i Issue) Equal(other Issue) bool {
	return i.RuleID == other.RuleID &&
		i.Category == other.Category &&
		i.Severity == other.Severity &&
		i.Message == other.Message &&
		i.FilePath == other.FilePath &&
		i.Line == other.Line &&
		equalPtr(i.Column, other.Column) &&
		equalPtr(i.EndLine, other.EndLine) &&
		equalPtr(i.EndColumn, other.EndColumn) &&
		equalPtr(i.Impact, other.Impact) &&
		equalPtr(i.Fix, other.Fix) &&
		slices.Equal(i.Tags, other.Tags) &&
		i.CreatedAt.Equal(other.CreatedAt) &&
		maps.EqualFunc(i.Metadata, other.Metadata, func(a, b any) bool { return reflect.DeepEqual(a, b) })
}

// ToMap converts the issue into its canonical map form.
func (i Issue) ToMap() map[string]any {
	out := map[string]any{
		"rule_id":    i.RuleID,
		"category":   i.Category.String(),
		"severity":   i.Severity.String(),
		"message":    i.Message,
		"file_path":  i.FilePath,
		"line":       i.Line,
		"created_at": i.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	if i.Column != nil {
		out["column"] = *i.Column
	}

	if i.EndLine != nil {
		out["end_line"] = *i.EndLine
	}

	if i.EndColumn != nil {
		out["end_column"] = *i.EndColumn
	}

	if i.Impact != nil {
		out["impact"] = map[string]any{
			"performance":     i.Impact.Performance,
			"security_risk":   i.Impact.SecurityRisk,
			"carbon_impact":   i.Impact.CarbonImpact,
			"maintainability": i.Impact.Maintainability,
			"cost_impact":     i.Impact.CostImpact,
		}
	}

	if fix := i.Fix; fix != nil {
		suggested := map[string]any{
			"description":  fix.Description,
			"can_auto_fix": fix.CanAutoFix,
			"confidence":   fix.Confidence,
		}

		if fix.ReplacementCode != "" {
			suggested["replacement_code"] = fix.ReplacementCode
		}

		if fix.Instructions != "" {
			suggested["instructions"] = fix.Instructions
		}

		out["suggested_fix"] = suggested
	}

	tags := make([]any, 0, len(i.Tags))
	for _, tag := range i.Tags {
		tags = append(tags, tag)
	}

	out["tags"] = tags

	if len(i.Metadata) > 0 {
		out["metadata"] = maps.Clone(i.Metadata)
	}

	return out
}

// IssueFromMap rebuilds an issue from its map form. Category and severity names are normalized here.
func IssueFromMap(raw map[string]any) (Issue, error) {
	src := fields{values: raw, where: "issue"}

	var (
		issue Issue
		err   error
	)

	if issue.RuleID, err = src.requiredString("rule_id"); err != nil {
		return Issue{}, err
	}

	src.where = fmt.Sprintf("issue %q", issue.RuleID)

	category, err := src.requiredString("category")
	if err != nil {
		return Issue{}, err
	}

	if issue.Category, err = ParseCategory(category); err != nil {
		return Issue{}, fmt.Errorf("%w: %s: %w", ErrMalformedResult, src.where, err)
	}

	severity, err := src.requiredString("severity")
	if err != nil {
		return Issue{}, err
	}

	if issue.Severity, err = ParseSeverity(severity); err != nil {
		return Issue{}, fmt.Errorf("%w: %s: %w", ErrMalformedResult, src.where, err)
	}

	if issue.Message, err = src.requiredString("message"); err != nil {
		return Issue{}, err
	}

	if issue.FilePath, _, err = src.optionalString("file_path"); err != nil {
		return Issue{}, err
	}

	line, ok, err := src.integer("line")
	if err != nil {
		return Issue{}, err
	}

	if !ok || line < 1 {
		return Issue{}, src.malformed("line", "must be a positive integer")
	}

	issue.Line = line

	if issue.Column, err = src.integerPtr("column"); err != nil {
		return Issue{}, err
	}

	if issue.EndLine, err = src.integerPtr("end_line"); err != nil {
		return Issue{}, err
	}

	if issue.EndColumn, err = src.integerPtr("end_column"); err != nil {
		return Issue{}, err
	}

	if issue.Impact, err = impactFromMap(src); err != nil {
		return Issue{}, err
	}

	if issue.Fix, err = fixFromMap(src); err != nil {
		return Issue{}, err
	}

	if issue.Tags, err = src.stringList("tags"); err != nil {
		return Issue{}, err
	}

	if issue.CreatedAt, err = src.timestamp("created_at"); err != nil {
		return Issue{}, err
	}

	metadata, ok, err := src.object("metadata")
	if err != nil {
		return Issue{}, err
	}

	if ok && len(metadata) > 0 {
		issue.Metadata = maps.Clone(metadata)
	}

	return issue, nil
}

func impactFromMap(src fields) (*Impact, error) {
	raw, ok, err := src.object("impact")
	if err != nil || !ok {
		return nil, err
	}

	impact := fields{values: raw, where: src.where + " impact"}
	out := &Impact{}

	for key, dst := range map[string]*float64{
		"performance":     &out.Performance,
		"security_risk":   &out.SecurityRisk,
		"carbon_impact":   &out.CarbonImpact,
		"maintainability": &out.Maintainability,
		"cost_impact":     &out.CostImpact,
	} {
		if *dst, _, err = impact.number(key); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func fixFromMap(src fields) (*Fix, error) {
	raw, ok, err := src.object("suggested_fix")
	if err != nil || !ok {
		return nil, err
	}

	suggested := fields{values: raw, where: src.where + " suggested_fix"}
	out := &Fix{}

	if out.Description, err = suggested.requiredString("description"); err != nil {
		return nil, err
	}

	if out.ReplacementCode, _, err = suggested.optionalString("replacement_code"); err != nil {
		return nil, err
	}

	if out.Instructions, _, err = suggested.optionalString("instructions"); err != nil {
		return nil, err
	}

	if out.CanAutoFix, err = suggested.boolean("can_auto_fix"); err != nil {
		return nil, err
	}

	if out.Confidence, _, err = suggested.number("confidence"); err != nil {
		return nil, err
	}

	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, suggested.malformed("confidence", "must be within [0, 1]")
	}

	return out, nil
}

// MarshalJSON implements json.Marshaler using the canonical map form.
func (i Issue) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResult, err)
	}

	issue, err := IssueFromMap(raw)
	if err != nil {
		return err
	}

	*i = issue

	return nil
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
