// Package store keeps the history of project analysis runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/farcloser/ecoguard"
)

// ErrRunNotFound is returned by LoadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// DB is the run history backed by SQLite.
type DB struct {
	conn *sql.DB
}

// Run is a listing row.
type Run struct {
	ID            string
	StartedAt     time.Time
	ProjectPath   string
	Files         int
	Issues        int
	GreenScore    float64
	SecurityScore float64
}

// RuleCount is the number of issues a rule raised at one severity in a run.
type RuleCount struct {
	RuleID   string
	Severity string
	Count    int
}

// Open opens, creating if missing, the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	db := &DB{conn: conn}
	if err = db.CreateSchema(ctx); err != nil {
		_ = conn.Close()

		return nil, err
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close() //nolint:wrapcheck // plain close
}

// CreateSchema creates the tables when missing.
func (db *DB) CreateSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS runs (
  id             TEXT PRIMARY KEY,
  started_at     TEXT NOT NULL,  -- RFC3339Nano
  project_path   TEXT NOT NULL,
  files          INTEGER NOT NULL,
  issues         INTEGER NOT NULL,
  green_score    REAL NOT NULL,
  security_score REAL NOT NULL,
  result_json    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
  run_id    TEXT NOT NULL,
  file_path TEXT NOT NULL,
  rule_id   TEXT NOT NULL,
  category  TEXT NOT NULL,
  severity  TEXT NOT NULL,
  line      INTEGER NOT NULL,
  message   TEXT NOT NULL,
  FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issues_run ON issues(run_id);
CREATE INDEX IF NOT EXISTS idx_issues_rule ON issues(rule_id);
`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun upserts a run and rewrites its issue rows.
func (db *DB) SaveRun(ctx context.Context, id string, startedAt time.Time, project *ecoguard.ProjectAnalysisResult) error {
	body, err := project.ToJSON(0)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, project_path, files, issues, green_score, security_score, result_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, project_path=excluded.project_path,
           files=excluded.files, issues=excluded.issues, green_score=excluded.green_score,
           security_score=excluded.security_score, result_json=excluded.result_json`,
		id, startedAt.UTC().Format(time.RFC3339Nano), project.ProjectPath, project.TotalFiles(), project.TotalIssues(),
		project.OverallGreenScore(), project.OverallSecurityScore(), body,
	); err != nil {
		return fmt.Errorf("saving run %s: %w", id, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM issues WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("clearing issues of run %s: %w", id, err)
	}

	if project.TotalIssues() > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO issues (run_id, file_path, rule_id, category, severity, line, message)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing issue insert: %w", err)
		}
		defer stmt.Close()

		for _, result := range project.FileResults {
			for _, issue := range result.Issues {
				if _, err = stmt.ExecContext(ctx,
					id, issue.FilePath, issue.RuleID, issue.Category.String(), issue.Severity.String(),
					issue.Line, issue.Message,
				); err != nil {
					return fmt.Errorf("saving issue of run %s: %w", id, err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// LoadRun rebuilds the full project result from the stored JSON.
func (db *DB) LoadRun(ctx context.Context, id string) (*ecoguard.ProjectAnalysisResult, error) {
	var body string

	err := db.conn.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	return ecoguard.ProjectAnalysisResultFromJSON(body) //nolint:wrapcheck // already descriptive
}

// ListRuns returns the most recent runs first. A limit of zero or less lists everything.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, started_at, project_path, files, issues, green_score, security_score
		  FROM runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run

	for rows.Next() {
		var (
			run       Run
			startedAt string
		)

		if err = rows.Scan(&run.ID, &startedAt, &run.ProjectPath, &run.Files, &run.Issues,
			&run.GreenScore, &run.SecurityScore); err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}

		// RFC3339Nano first, RFC3339 for rows written by hand.
		if parsed, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = parsed
		} else if parsed, err := time.Parse(time.RFC3339, startedAt); err == nil {
			run.StartedAt = parsed
		}

		out = append(out, run)
	}

	return out, rows.Err() //nolint:wrapcheck // plain iteration error
}

// RuleCounts aggregates the issues of a run per rule and severity, most frequent first.
func (db *DB) RuleCounts(ctx context.Context, id string) ([]RuleCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT rule_id, severity, COUNT(1) AS hits
		  FROM issues
		 WHERE run_id = ?
		 GROUP BY rule_id, severity
		 ORDER BY hits DESC, rule_id, severity`, id)
	if err != nil {
		return nil, fmt.Errorf("counting issues of run %s: %w", id, err)
	}
	defer rows.Close()

	var out []RuleCount

	for rows.Next() {
		var count RuleCount
		if err = rows.Scan(&count.RuleID, &count.Severity, &count.Count); err != nil {
			return nil, fmt.Errorf("counting issues of run %s: %w", id, err)
		}

		out = append(out, count)
	}

	return out, rows.Err() //nolint:wrapcheck // plain iteration error
}
