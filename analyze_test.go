package ecoguard_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ecoguard"
)

func functionFactory() ([]*ecoguard.Analyzer, error) {
	analyzer := ecoguard.NewAnalyzer("quality", "functions")
	analyzer.RegisterRule(functionRule())

	return []*ecoguard.Analyzer{analyzer}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestAnalyzeSourceSyntaxError(t *testing.T) {
	analyzers, _ := functionFactory()

	result := ecoguard.AnalyzeSource("broken.go", []byte("package broken\n\nfunc {\n"), analyzers)

	if result.IssueCount() != 1 {
		t.Fatalf("expected a single syntax issue, got %d", result.IssueCount())
	}

	issue := result.Issues[0]
	if issue.Category != ecoguard.CategorySyntax || issue.RuleID != ecoguard.SyntaxErrorRuleID ||
		issue.Severity != ecoguard.SeverityError {
		t.Errorf("unexpected issue: %+v", issue)
	}

	if issue.Line != 3 {
		t.Errorf("expected the parser position, got line %d", issue.Line)
	}

	if !result.HasErrors() {
		t.Error("unparseable input must not look clean")
	}
}

func TestAnalyzeSourceRecordsRuleFailures(t *testing.T) {
	analyzer := ecoguard.NewAnalyzer("quality", "")
	analyzer.RegisterRule(panickingRule("explodes"))
	analyzer.RegisterRule(functionRule())

	result := ecoguard.AnalyzeSource("sample.go", []byte(twoFunctions), []*ecoguard.Analyzer{analyzer})
	if result.IssueCount() != 2 {
		t.Errorf("expected 2 issues, got %d", result.IssueCount())
	}

	failures, ok := result.Metadata["rule_failures"].([]any)
	if !ok || len(failures) != 1 {
		t.Fatalf("expected one recorded failure, got %v", result.Metadata)
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sample.go", twoFunctions)

	result, err := ecoguard.AnalyzeFile(path, functionFactory)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilePath != path || result.IssueCount() != 2 {
		t.Errorf("unexpected result %s", result)
	}

	if _, err := ecoguard.AnalyzeFile(filepath.Join(dir, "missing.go"), functionFactory); !errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("expected a read failure, got %v", err)
	}
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.go", twoFunctions)
	writeFile(t, dir, "a.go", "package sample\n")
	writeFile(t, dir, "pkg/c.go", "package pkg\n\nfunc only() {}\n")
	writeFile(t, dir, "vendor/v.go", twoFunctions)
	writeFile(t, dir, ".hidden/h.go", twoFunctions)
	writeFile(t, dir, "testdata/t.go", twoFunctions)
	writeFile(t, dir, "gen/zz_generated.go", twoFunctions)
	writeFile(t, dir, "README.md", "# sample\n")

	var (
		mutex sync.Mutex
		seen  []string
	)

	opts := ecoguard.ScanOptions{
		Workers: 2,
		Exclude: []string{"zz_*.go"},
		Progress: func(_, total int, path string) {
			mutex.Lock()
			defer mutex.Unlock()

			if total != 3 {
				t.Errorf("expected 3 files in total, got %d", total)
			}

			seen = append(seen, path)
		},
	}

	project, err := ecoguard.AnalyzeDirectory(context.Background(), dir, functionFactory, opts)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "a.go"),
		filepath.Join(dir, "b.go"),
		filepath.Join(dir, "pkg", "c.go"),
	}

	if project.TotalFiles() != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), project.TotalFiles())
	}

	for idx, result := range project.FileResults {
		if result.FilePath != want[idx] {
			t.Errorf("file %d: got %q, want %q", idx, result.FilePath, want[idx])
		}
	}

	if project.TotalIssues() != 3 {
		t.Errorf("expected 3 issues, got %d", project.TotalIssues())
	}

	if len(seen) != 3 {
		t.Errorf("progress called %d times", len(seen))
	}
}

func TestAnalyzeDirectoryWithoutSources(t *testing.T) {
	project, err := ecoguard.AnalyzeDirectory(context.Background(), t.TempDir(), functionFactory, ecoguard.ScanOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if project.TotalFiles() != 0 || project.OverallGreenScore() != 100 {
		t.Errorf("unexpected empty project %+v", project)
	}
}

func TestAnalyzeDirectoryCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", twoFunctions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ecoguard.AnalyzeDirectory(ctx, dir, functionFactory, ecoguard.ScanOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeDirectoryFactoryError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", twoFunctions)

	failing := func() ([]*ecoguard.Analyzer, error) { return nil, errBroken }

	if _, err := ecoguard.AnalyzeDirectory(context.Background(), dir, failing, ecoguard.ScanOptions{}); !errors.Is(err, errBroken) {
		t.Errorf("expected the factory error, got %v", err)
	}
}

func TestDiscoverFilesSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "one.go", twoFunctions)

	files, err := ecoguard.DiscoverFiles(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 1 || files[0] != path {
		t.Errorf("got %v", files)
	}

	if _, err := ecoguard.DiscoverFiles(filepath.Join(t.TempDir(), "nope"), nil); !errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("expected a read failure, got %v", err)
	}
}
