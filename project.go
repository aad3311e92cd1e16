package ecoguard

import (
	"encoding/json"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ProjectAnalysisResult aggregates the results of every file in a project, in analysis order.
type ProjectAnalysisResult struct {
	ProjectPath  string
	FileResults  []*AnalysisResult
	AnalysisTime time.Time
}

// NewProjectAnalysisResult returns an empty project result stamped with the current time.
func NewProjectAnalysisResult(projectPath string) *ProjectAnalysisResult {
	return &ProjectAnalysisResult{
		ProjectPath:  projectPath,
		AnalysisTime: time.Now(),
	}
}

// Add appends a file result.
func (p *ProjectAnalysisResult) Add(result *AnalysisResult) {
	p.FileResults = append(p.FileResults, result)
}

func (p *ProjectAnalysisResult) TotalFiles() int {
	return len(p.FileResults)
}

func (p *ProjectAnalysisResult) TotalIssues() int {
	total := 0
	for _, result := range p.FileResults {
		total += result.IssueCount()
	}

	return total
}

// FilesWithIssues returns the file results holding at least one issue.
func (p *ProjectAnalysisResult) FilesWithIssues() []*AnalysisResult {
	var out []*AnalysisResult

	for _, result := range p.FileResults {
		if result.IssueCount() > 0 {
			out = append(out, result)
		}
	}

	return out
}

// SummaryBySeverity maps every severity to its issue count across all files.
func (p *ProjectAnalysisResult) SummaryBySeverity() map[Severity]int {
	summary := make(map[Severity]int, len(Severities))
	for _, severity := range Severities {
		summary[severity] = 0
	}

	for _, result := range p.FileResults {
		for _, issue := range result.Issues {
			summary[issue.Severity]++
		}
	}

	return summary
}

// SummaryByCategory maps every category to its issue count across all files.
func (p *ProjectAnalysisResult) SummaryByCategory() map[Category]int {
	summary := make(map[Category]int, len(Categories))
	for _, category := range Categories {
		summary[category] = 0
	}

	for _, result := range p.FileResults {
		for _, issue := range result.Issues {
			summary[issue.Category]++
		}
	}

	return summary
}

// OverallGreenScore is the mean of the per-file green scores, or 100 for an empty project.
func (p *ProjectAnalysisResult) OverallGreenScore() float64 {
	return p.meanScore((*AnalysisResult).GreenScore)
}

// OverallSecurityScore is the mean of the per-file security scores, or 100 for an empty project.
func (p *ProjectAnalysisResult) OverallSecurityScore() float64 {
	return p.meanScore((*AnalysisResult).SecurityScore)
}

func (p *ProjectAnalysisResult) meanScore(fileScore func(*AnalysisResult) float64) float64 {
	if len(p.FileResults) == 0 {
		return perfectScore
	}

	scores := make([]float64, len(p.FileResults))
	for idx, result := range p.FileResults {
		scores[idx] = fileScore(result)
	}

	return stat.Mean(scores, nil)
}

// HasErrors reports whether any file holds an ERROR or CRITICAL issue.
func (p *ProjectAnalysisResult) HasErrors() bool {
	for _, result := range p.FileResults {
		if result.HasErrors() {
			return true
		}
	}

	return false
}

// ToMap converts the project result into its canonical map form.
func (p *ProjectAnalysisResult) ToMap() map[string]any {
	files := make([]any, 0, len(p.FileResults))
	for _, result := range p.FileResults {
		files = append(files, result.ToMap())
	}

	return map[string]any{
		"project_path":  p.ProjectPath,
		"analysis_time": p.AnalysisTime.UTC().Format(time.RFC3339Nano),
		"summary": map[string]any{
			"total_files":            p.TotalFiles(),
			"total_issues":           p.TotalIssues(),
			"by_severity":            severityCounts(p.SummaryBySeverity()),
			"by_category":            categoryCounts(p.SummaryByCategory()),
			"overall_green_score":    p.OverallGreenScore(),
			"overall_security_score": p.OverallSecurityScore(),
		},
		"files": files,
	}
}

// ToJSON serializes the project result. A positive indent pretty-prints with that many spaces.
func (p *ProjectAnalysisResult) ToJSON(indent int) (string, error) {
	return toJSON(p.ToMap(), indent)
}

// MarshalJSON implements json.Marshaler using the canonical map form.
func (p *ProjectAnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ProjectAnalysisResultFromMap rebuilds a project result from its map form.
func ProjectAnalysisResultFromMap(raw map[string]any) (*ProjectAnalysisResult, error) {
	src := fields{values: raw, where: "project result"}

	projectPath, err := src.requiredString("project_path")
	if err != nil {
		return nil, err
	}

	analysisTime, err := src.timestamp("analysis_time")
	if err != nil {
		return nil, err
	}

	items, err := src.list("files")
	if err != nil {
		return nil, err
	}

	project := &ProjectAnalysisResult{
		ProjectPath:  projectPath,
		AnalysisTime: analysisTime,
		FileResults:  make([]*AnalysisResult, 0, len(items)),
	}

	for idx, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, src.malformed("files", fmt.Sprintf("item %d must be an object, got %T", idx, item))
		}

		result, err := AnalysisResultFromMap(entry)
		if err != nil {
			return nil, err
		}

		project.Add(result)
	}

	return project, nil
}

// ProjectAnalysisResultFromJSON parses the output of ProjectAnalysisResult.ToJSON.
func ProjectAnalysisResultFromJSON(data string) (*ProjectAnalysisResult, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	return ProjectAnalysisResultFromMap(raw)
}
