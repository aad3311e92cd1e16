// Package output renders analysis results as json, text or table.
//
// The minimum severity only hides issues from what is printed. Summaries and
// scores are always computed from every issue of the result.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/farcloser/ecoguard"
)

const (
	fileRule    = 60
	projectRule = 80
	jsonIndent  = "  "
)

// Options controls rendering.
type Options struct {
	Format      ecoguard.Format
	MinSeverity ecoguard.Severity
	Color       bool
}

func (o Options) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if o.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	return c
}

func (o Options) severityColor(severity ecoguard.Severity) *color.Color {
	switch severity {
	case ecoguard.SeverityCritical:
		return o.paint(color.FgRed, color.Bold)
	case ecoguard.SeverityError:
		return o.paint(color.FgRed)
	case ecoguard.SeverityWarning:
		return o.paint(color.FgYellow)
	case ecoguard.SeverityInfo:
		return o.paint(color.FgBlue)
	default:
		return o.paint(color.Faint)
	}
}

// WriteResult renders a single file result.
func WriteResult(w io.Writer, result *ecoguard.AnalysisResult, opts Options) error {
	switch opts.Format {
	case ecoguard.FormatJSON:
		return writeJSON(w, ResultMap(result, opts.MinSeverity))
	case ecoguard.FormatText:
		return writeResultText(w, result, opts)
	case ecoguard.FormatTable:
		return writeResultTable(w, result, opts)
	}

	return fmt.Errorf("%w: %s", ecoguard.ErrUnknownFormat, opts.Format)
}

// WriteProject renders a project result.
func WriteProject(w io.Writer, project *ecoguard.ProjectAnalysisResult, opts Options) error {
	switch opts.Format {
	case ecoguard.FormatJSON:
		return writeJSON(w, ProjectMap(project, opts.MinSeverity))
	case ecoguard.FormatText:
		return writeProjectText(w, project, opts)
	case ecoguard.FormatTable:
		return writeProjectTable(w, project, opts)
	}

	return fmt.Errorf("%w: %s", ecoguard.ErrUnknownFormat, opts.Format)
}

// ResultMap is the canonical map of result with its issue list limited to minimum and above.
func ResultMap(result *ecoguard.AnalysisResult, minimum ecoguard.Severity) map[string]any {
	meta := result.ToMap()

	shown := result.Filter(minimum).Issues
	issues := make([]any, 0, len(shown))

	for _, issue := range shown {
		issues = append(issues, issue.ToMap())
	}

	meta["issues"] = issues

	return meta
}

// ProjectMap is the canonical map of project, each file limited as in ResultMap.
func ProjectMap(project *ecoguard.ProjectAnalysisResult, minimum ecoguard.Severity) map[string]any {
	meta := project.ToMap()

	files := make([]any, 0, len(project.FileResults))
	for _, result := range project.FileResults {
		files = append(files, ResultMap(result, minimum))
	}

	meta["files"] = files

	return meta
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", jsonIndent)

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}

	return nil
}

// descending lists severities from critical down to debug.
func descending() []ecoguard.Severity {
	out := make([]ecoguard.Severity, len(ecoguard.Severities))
	for idx, severity := range ecoguard.Severities {
		out[len(out)-1-idx] = severity
	}

	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func writeResultText(w io.Writer, result *ecoguard.AnalysisResult, opts Options) error {
	var out strings.Builder

	fmt.Fprintf(&out, "Analysis Results for: %s\n", result.FilePath)
	out.WriteString(strings.Repeat("=", fileRule) + "\n")

	shown := result.Filter(opts.MinSeverity).Issues
	if len(shown) == 0 {
		out.WriteString("No issues found!\n")
	} else {
		fmt.Fprintf(&out, "Found %d issues:\n\n", len(shown))

		for _, issue := range shown {
			out.WriteString(issue.String() + "\n")
		}
	}

	_, err := io.WriteString(w, out.String())

	return err //nolint:wrapcheck // plain writer error
}

func writeProjectText(w io.Writer, project *ecoguard.ProjectAnalysisResult, opts Options) error {
	var out strings.Builder

	fmt.Fprintf(&out, "Project Analysis Results: %s\n", project.ProjectPath)
	out.WriteString(strings.Repeat("=", projectRule) + "\n")
	fmt.Fprintf(&out, "Files analyzed: %d\n", project.TotalFiles())
	fmt.Fprintf(&out, "Total issues: %d\n\n", project.TotalIssues())

	out.WriteString("Issues by Severity:\n")

	summary := project.SummaryBySeverity()
	for _, severity := range descending() {
		if count := summary[severity]; count > 0 {
			fmt.Fprintf(&out, "  %s: %d\n", capitalize(severity.String()), count)
		}
	}

	for _, result := range project.FileResults {
		shown := result.Filter(opts.MinSeverity).Issues
		if len(shown) == 0 {
			continue
		}

		fmt.Fprintf(&out, "\n%s:\n", result.FilePath)

		for _, issue := range shown {
			out.WriteString("  " + issue.String() + "\n")
		}
	}

	_, err := io.WriteString(w, out.String())

	return err //nolint:wrapcheck // plain writer error
}

func writeResultTable(w io.Writer, result *ecoguard.AnalysisResult, opts Options) error {
	title := opts.paint(color.FgCyan, color.Bold)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding

	fmt.Fprintf(tw, "%s %s\n", title.Sprint("Analysis Results for:"), result.FilePath)

	shown := result.Filter(opts.MinSeverity).Issues
	if len(shown) == 0 {
		fmt.Fprintln(tw, opts.paint(color.FgGreen).Sprint("No issues found!"))

		return flush(tw)
	}

	fmt.Fprintf(tw, "\n%s\n", title.Sprint("Summary"))
	fmt.Fprintf(tw, "  Total Issues\t%d\n", result.IssueCount())

	for _, severity := range descending() {
		fmt.Fprintf(tw, "  %s\t%d\n", capitalize(severity.String()), result.CountBySeverity(severity))
	}

	fmt.Fprintf(tw, "  Green Score\t%.1f/100\n", result.GreenScore())
	fmt.Fprintf(tw, "  Security Score\t%.1f/100\n", result.SecurityScore())

	// Colored text goes last on each row so escape codes do not skew the columns.
	fmt.Fprintf(tw, "\n%s\n", title.Sprint("Issues Found"))
	fmt.Fprintln(tw, "LINE\tCATEGORY\tRULE\tSEVERITY  MESSAGE")

	for _, issue := range shown {
		label := fmt.Sprintf("%-8s", strings.ToUpper(issue.Severity.String()))
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s  %s\n",
			issue.Line, issue.Category, issue.RuleID, opts.severityColor(issue.Severity).Sprint(label), issue.Message)
	}

	return flush(tw)
}

func writeProjectTable(w io.Writer, project *ecoguard.ProjectAnalysisResult, opts Options) error {
	title := opts.paint(color.FgCyan, color.Bold)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding

	fmt.Fprintf(tw, "%s %s\n", title.Sprint("Project Analysis Results:"), project.ProjectPath)

	fmt.Fprintf(tw, "\n%s\n", title.Sprint("Project Summary"))
	fmt.Fprintf(tw, "  Files Analyzed\t%d\n", project.TotalFiles())
	fmt.Fprintf(tw, "  Total Issues\t%d\n", project.TotalIssues())

	summary := project.SummaryBySeverity()
	for _, severity := range descending() {
		if count := summary[severity]; count > 0 {
			fmt.Fprintf(tw, "  %s\t%d\n", capitalize(severity.String()), count)
		}
	}

	fmt.Fprintf(tw, "  Overall Green Score\t%.1f/100\n", project.OverallGreenScore())
	fmt.Fprintf(tw, "  Overall Security Score\t%.1f/100\n", project.OverallSecurityScore())

	var shown []*ecoguard.AnalysisResult

	for _, result := range project.FileResults {
		if filtered := result.Filter(opts.MinSeverity); filtered.IssueCount() > 0 {
			shown = append(shown, filtered)
		}
	}

	if len(shown) == 0 {
		fmt.Fprintf(tw, "\n%s\n", opts.paint(color.FgGreen).Sprint("No issues found in any files!"))

		return flush(tw)
	}

	fmt.Fprintf(tw, "\n%s\n", title.Sprint("Files with Issues"))
	fmt.Fprintln(tw, "FILE\tISSUES\tCRITICAL\tERROR\tWARNING\tINFO")

	for _, result := range shown {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n",
			result.FilePath, result.IssueCount(), result.CriticalCount(), result.ErrorCount(),
			result.WarningCount(), result.InfoCount())
	}

	return flush(tw)
}

func flush(tw *tabwriter.Writer) error {
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	return nil
}
