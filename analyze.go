//nolint:wrapcheck
package ecoguard

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/farcloser/primordium/fault"
)

/*
Usage:

factory := func() ([]*ecoguard.Analyzer, error) {
    quality := ecoguard.NewAnalyzer("quality", "Code quality checks")
    quality.RegisterRule(myRule())
    return []*ecoguard.Analyzer{quality}, nil
}

// One file
result, err := ecoguard.AnalyzeFile("main.go", factory)
fmt.Println(result.GreenScore(), result.SecurityScore())

// A whole tree, eight files at a time
opts := ecoguard.ScanOptions{Workers: 8}
project, err := ecoguard.AnalyzeDirectory(ctx, "./", factory, opts)
if project.HasErrors() {
    os.Exit(1)
}
*/

const (
	// SyntaxErrorRuleID marks the issue reported for a file that could not be parsed.
	SyntaxErrorRuleID = "syntax-error"
	// ReadErrorRuleID marks the issue reported for a file that could not be read.
	ReadErrorRuleID = "read-error"
)

// AnalyzerFactory builds a fresh set of analyzers. It is called once per analyzed file,
// so rule instances are never shared between files analyzed concurrently.
type AnalyzerFactory func() ([]*Analyzer, error)

// ProgressFunc is called after each file of a directory scan completes.
type ProgressFunc func(done, total int, path string)

// ScanOptions configures AnalyzeDirectory.
type ScanOptions struct {
	Workers  int      // default: NumCPU
	Exclude  []string // glob patterns matched against slash-separated relative paths and base names
	Progress ProgressFunc
	Logger   *slog.Logger
}

// ScanOptions derives directory scan options from the configuration.
func (c Config) ScanOptions() ScanOptions {
	applyDefaults(&c)

	return ScanOptions{Workers: c.Workers, Exclude: c.Exclude}
}

// ParseSource parses Go source text into a Tree.
func ParseSource(path string, source []byte) (*Tree, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, path, source, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	return &Tree{Fset: fset, File: file}, nil
}

// AnalyzeSource parses source and runs every enabled analyzer over it.
// Unparseable source yields a single SYNTAX issue and no rule runs.
func AnalyzeSource(path string, source []byte, analyzers []*Analyzer) *AnalysisResult {
	tree, err := ParseSource(path, source)
	if err != nil {
		return syntaxErrorResult(path, err)
	}

	var (
		issues   []Issue
		failures []any
	)

	text := string(source)

	for _, analyzer := range analyzers {
		if !analyzer.Enabled() {
			continue
		}

		found, failed := analyzer.Check(tree, text, path)
		issues = append(issues, found...)

		for _, failure := range failed {
			failures = append(failures, map[string]any{
				"analyzer": analyzer.Name(),
				"rule_id":  failure.RuleID,
				"error":    failure.Err.Error(),
			})
		}
	}

	result := NewAnalysisResult(path, issues)
	if len(failures) > 0 {
		result.Metadata = map[string]any{"rule_failures": failures}
	}

	return result
}

// AnalyzeFile reads and analyzes a single file.
func AnalyzeFile(path string, factory AnalyzerFactory) (*AnalysisResult, error) {
	source, err := os.ReadFile(path) //nolint:gosec // analyzing user-specified files is the point
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	analyzers, err := factory()
	if err != nil {
		return nil, err
	}

	return AnalyzeSource(path, source, analyzers), nil
}

// AnalyzeDirectory analyzes every Go file under root on a bounded worker pool.
// File results keep discovery order. Unreadable files are reported as SYSTEM issues.
func AnalyzeDirectory(
	ctx context.Context,
	root string,
	factory AnalyzerFactory,
	opts ScanOptions,
) (*ProjectAnalysisResult, error) {
	files, err := DiscoverFiles(root, opts.Exclude)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}

	project := NewProjectAnalysisResult(root)
	results := make([]*AnalysisResult, len(files))

	var progress atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for idx, filePath := range files {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			result, err := analyzePath(filePath, factory)
			if err != nil {
				return err
			}

			results[idx] = result

			done := progress.Add(1)
			logger.Debug("analyzed file", "file", filePath, "issues", result.IssueCount())

			if opts.Progress != nil {
				opts.Progress(int(done), len(files), filePath)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, result := range results {
		project.Add(result)
	}

	return project, nil
}

func analyzePath(path string, factory AnalyzerFactory) (*AnalysisResult, error) {
	source, err := os.ReadFile(path) //nolint:gosec // analyzing user-specified files is the point
	if err != nil {
		issue := NewIssue(ReadErrorRuleID, CategorySystem, SeverityError,
			fmt.Sprintf("could not read file: %v", err), path, 1)

		return NewAnalysisResult(path, []Issue{issue}), nil
	}

	analyzers, err := factory()
	if err != nil {
		return nil, err
	}

	return AnalyzeSource(path, source, analyzers), nil
}

func syntaxErrorResult(path string, err error) *AnalysisResult {
	line, column, message := 1, -1, err.Error()

	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		line = list[0].Pos.Line
		column = list[0].Pos.Column - 1
		message = list[0].Msg
	}

	issue := NewIssue(SyntaxErrorRuleID, CategorySyntax, SeverityError, "syntax error: "+message, path, line)
	if column >= 0 {
		issue.Column = &column
	}

	return NewAnalysisResult(path, []Issue{issue})
}

// DiscoverFiles lists the Go files to analyze under root in lexical order.
// A root naming a file is returned as is. Hidden, vendor, testdata and underscore-prefixed
// directories are skipped, as the go tool does.
func DiscoverFiles(root string, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if path != root && (skippedDir(entry.Name()) || excluded(rel, exclude)) {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasSuffix(entry.Name(), ".go") && !excluded(rel, exclude) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %q: %w", root, err)
	}

	return files, nil
}

func skippedDir(name string) bool {
	return name == "vendor" || name == "testdata" || name == "node_modules" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func excluded(rel string, patterns []string) bool {
	base := filepath.Base(rel)

	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}

		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}

	return false
}
