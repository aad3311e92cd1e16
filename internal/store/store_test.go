package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/store"
)

func open(t *testing.T) *store.DB {
	t.Helper()

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func sampleProject() *ecoguard.ProjectAnalysisResult {
	project := ecoguard.NewProjectAnalysisResult("./src")
	project.Add(ecoguard.NewAnalysisResult("src/a.go", []ecoguard.Issue{
		ecoguard.NewIssue("shell-exec", ecoguard.CategorySecurity, ecoguard.SeverityError, "shell", "src/a.go", 4),
		ecoguard.NewIssue("long-line", ecoguard.CategoryQuality, ecoguard.SeverityInfo, "long", "src/a.go", 9),
		ecoguard.NewIssue("long-line", ecoguard.CategoryQuality, ecoguard.SeverityInfo, "long", "src/a.go", 12),
	}))
	project.Add(ecoguard.NewAnalysisResult("src/b.go", nil))

	return project
}

func TestSaveAndLoadRun(t *testing.T) {
	ctx := context.Background()
	db := open(t)
	project := sampleProject()

	if err := db.SaveRun(ctx, "run-1", time.Now(), project); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := db.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.ProjectPath != "./src" || loaded.TotalFiles() != 2 || loaded.TotalIssues() != 3 {
		t.Errorf("unexpected project %s", loaded.ProjectPath)
	}

	if loaded.OverallSecurityScore() != project.OverallSecurityScore() {
		t.Errorf("scores differ after reload: %v vs %v", loaded.OverallSecurityScore(), project.OverallSecurityScore())
	}

	counts, err := db.RuleCounts(ctx, "run-1")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}

	if len(counts) != 2 || counts[0].RuleID != "long-line" || counts[0].Count != 2 || counts[1].Severity != "error" {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestSaveRunReplaces(t *testing.T) {
	ctx := context.Background()
	db := open(t)

	if err := db.SaveRun(ctx, "run-1", time.Now(), sampleProject()); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := db.SaveRun(ctx, "run-1", time.Now(), ecoguard.NewProjectAnalysisResult("./other")); err != nil {
		t.Fatalf("resave: %v", err)
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(runs) != 1 || runs[0].ProjectPath != "./other" || runs[0].Issues != 0 {
		t.Errorf("unexpected runs %+v", runs)
	}

	counts, err := db.RuleCounts(ctx, "run-1")
	if err != nil || len(counts) != 0 {
		t.Errorf("issue rows should be rewritten, got %+v (%v)", counts, err)
	}
}

func TestListRunsOrder(t *testing.T) {
	ctx := context.Background()
	db := open(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for idx, id := range []string{"first", "second", "third"} {
		if err := db.SaveRun(ctx, id, base.Add(time.Duration(idx)*time.Hour), sampleProject()); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	runs, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(runs) != 2 || runs[0].ID != "third" || runs[1].ID != "second" {
		t.Fatalf("unexpected order %+v", runs)
	}

	if !runs[0].StartedAt.Equal(base.Add(2*time.Hour)) || runs[0].Files != 2 || runs[0].Issues != 3 {
		t.Errorf("unexpected row %+v", runs[0])
	}
}

func TestLoadRunMissing(t *testing.T) {
	_, err := open(t).LoadRun(context.Background(), "nope")
	if !errors.Is(err, store.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestNewRunID(t *testing.T) {
	if store.NewRunID() == store.NewRunID() {
		t.Error("run ids must be unique")
	}
}
