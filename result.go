package ecoguard

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

const perfectScore = 100.0

// Per-issue deductions applied to the green and security scores.
//
//nolint:gochecknoglobals // configuration data, effectively const
var (
	greenDeductions = map[Severity]float64{
		SeverityDebug:    0,
		SeverityInfo:     5,
		SeverityWarning:  10,
		SeverityError:    15,
		SeverityCritical: 25,
	}

	securityDeductions = map[Severity]float64{
		SeverityDebug:    0,
		SeverityInfo:     3,
		SeverityWarning:  10,
		SeverityError:    20,
		SeverityCritical: 30,
	}
)

// AnalysisResult holds the issues found in one file.
type AnalysisResult struct {
	FilePath     string
	Issues       []Issue // discovery order
	AnalysisTime time.Time
	Metadata     map[string]any
}

// NewAnalysisResult returns a result for filePath stamped with the current time.
func NewAnalysisResult(filePath string, issues []Issue) *AnalysisResult {
	return &AnalysisResult{
		FilePath:     filePath,
		Issues:       issues,
		AnalysisTime: time.Now(),
	}
}

// IssueCount is the total number of issues.
func (r *AnalysisResult) IssueCount() int {
	return len(r.Issues)
}

// CountBySeverity counts issues of exactly the given severity.
func (r *AnalysisResult) CountBySeverity(severity Severity) int {
	count := 0

	for _, issue := range r.Issues {
		if issue.Severity == severity {
			count++
		}
	}

	return count
}

func (r *AnalysisResult) CriticalCount() int { return r.CountBySeverity(SeverityCritical) }
func (r *AnalysisResult) ErrorCount() int    { return r.CountBySeverity(SeverityError) }
func (r *AnalysisResult) WarningCount() int  { return r.CountBySeverity(SeverityWarning) }
func (r *AnalysisResult) InfoCount() int     { return r.CountBySeverity(SeverityInfo) }
func (r *AnalysisResult) DebugCount() int    { return r.CountBySeverity(SeverityDebug) }

// IssuesBySeverity returns the issues of exactly the given severity, in discovery order.
func (r *AnalysisResult) IssuesBySeverity(severity Severity) []Issue {
	return r.filter(func(issue Issue) bool { return issue.Severity == severity })
}

// IssuesByCategory returns the issues of the given category, in discovery order.
func (r *AnalysisResult) IssuesByCategory(category Category) []Issue {
	return r.filter(func(issue Issue) bool { return issue.Category == category })
}

// IssuesByRule returns the issues reported by the given rule, in discovery order.
func (r *AnalysisResult) IssuesByRule(ruleID string) []Issue {
	return r.filter(func(issue Issue) bool { return issue.RuleID == ruleID })
}

func (r *AnalysisResult) filter(keep func(Issue) bool) []Issue {
	var out []Issue

	for _, issue := range r.Issues {
		if keep(issue) {
			out = append(out, issue)
		}
	}

	return out
}

// SummaryBySeverity maps every severity to its issue count.
func (r *AnalysisResult) SummaryBySeverity() map[Severity]int {
	summary := make(map[Severity]int, len(Severities))
	for _, severity := range Severities {
		summary[severity] = 0
	}

	for _, issue := range r.Issues {
		summary[issue.Severity]++
	}

	return summary
}

// SummaryByCategory maps every category to its issue count.
func (r *AnalysisResult) SummaryByCategory() map[Category]int {
	summary := make(map[Category]int, len(Categories))
	for _, category := range Categories {
		summary[category] = 0
	}

	for _, issue := range r.Issues {
		summary[issue.Category]++
	}

	return summary
}

// GreenScore is 100 minus the deductions of every GREEN issue, floored at 0.
func (r *AnalysisResult) GreenScore() float64 {
	return score(r.Issues, CategoryGreen, greenDeductions)
}

// SecurityScore is 100 minus the deductions of every SECURITY issue, floored at 0.
func (r *AnalysisResult) SecurityScore() float64 {
	return score(r.Issues, CategorySecurity, securityDeductions)
}

func score(issues []Issue, category Category, deductions map[Severity]float64) float64 {
	value := perfectScore

	for _, issue := range issues {
		if issue.Category == category {
			value -= deductions[issue.Severity]
		}
	}

	return max(value, 0)
}

// HasErrors reports whether any issue is ERROR or CRITICAL.
func (r *AnalysisResult) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity >= SeverityError {
			return true
		}
	}

	return false
}

// Filter returns a copy holding only the issues at or above minimum.
func (r *AnalysisResult) Filter(minimum Severity) *AnalysisResult {
	out := *r
	out.Issues = r.filter(func(issue Issue) bool { return issue.Severity >= minimum })

	return &out
}

func (r *AnalysisResult) String() string {
	return fmt.Sprintf("AnalysisResult(file_path=%q, issues=%d)", r.FilePath, len(r.Issues))
}

func (r *AnalysisResult) summaryMap() map[string]any {
	return map[string]any{
		"total_issues":   len(r.Issues),
		"by_severity":    severityCounts(r.SummaryBySeverity()),
		"by_category":    categoryCounts(r.SummaryByCategory()),
		"green_score":    r.GreenScore(),
		"security_score": r.SecurityScore(),
	}
}

// ToMap converts the result into its canonical map form.
func (r *AnalysisResult) ToMap() map[string]any {
	issues := make([]any, 0, len(r.Issues))
	for _, issue := range r.Issues {
		issues = append(issues, issue.ToMap())
	}

	out := map[string]any{
		"file_path":     r.FilePath,
		"analysis_time": r.AnalysisTime.UTC().Format(time.RFC3339Nano),
		"summary":       r.summaryMap(),
		"issues":        issues,
	}

	if len(r.Metadata) > 0 {
		out["metadata"] = maps.Clone(r.Metadata)
	}

	return out
}

// ToJSON serializes the result. A positive indent pretty-prints with that many spaces.
func (r *AnalysisResult) ToJSON(indent int) (string, error) {
	return toJSON(r.ToMap(), indent)
}

// MarshalJSON implements json.Marshaler using the canonical map form.
func (r *AnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	parsed, err := AnalysisResultFromJSON(string(data))
	if err != nil {
		return err
	}

	*r = *parsed

	return nil
}

// AnalysisResultFromMap rebuilds a result from its map form. The summary is derived and ignored.
func AnalysisResultFromMap(raw map[string]any) (*AnalysisResult, error) {
	src := fields{values: raw, where: "analysis result"}

	filePath, err := src.requiredString("file_path")
	if err != nil {
		return nil, err
	}

	src.where = fmt.Sprintf("analysis result %q", filePath)

	analysisTime, err := src.timestamp("analysis_time")
	if err != nil {
		return nil, err
	}

	items, err := src.list("issues")
	if err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(items))

	for idx, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, src.malformed("issues", fmt.Sprintf("item %d must be an object, got %T", idx, item))
		}

		issue, err := IssueFromMap(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: issue %d: %w", src.where, idx, err)
		}

		issues = append(issues, issue)
	}

	metadata, _, err := src.object("metadata")
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		FilePath:     filePath,
		Issues:       issues,
		AnalysisTime: analysisTime,
	}

	if len(metadata) > 0 {
		result.Metadata = maps.Clone(metadata)
	}

	return result, nil
}

// AnalysisResultFromJSON parses the output of ToJSON.
func AnalysisResultFromJSON(data string) (*AnalysisResult, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	return AnalysisResultFromMap(raw)
}

func toJSON(value any, indent int) (string, error) {
	var (
		out []byte
		err error
	)

	if indent > 0 {
		out, err = json.MarshalIndent(value, "", strings.Repeat(" ", indent))
	} else {
		out, err = json.Marshal(value)
	}

	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}

	return string(out), nil
}

func decodeObject(data string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResult, err)
	}

	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedResult)
	}

	return raw, nil
}

func severityCounts(summary map[Severity]int) map[string]any {
	out := make(map[string]any, len(summary))
	for severity, count := range summary {
		out[severity.String()] = count
	}

	return out
}

func categoryCounts(summary map[Category]int) map[string]any {
	out := make(map[string]any, len(summary))
	for category, count := range summary {
		out[category.String()] = count
	}

	return out
}
