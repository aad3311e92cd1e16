package rulesdsl_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/rulesdsl"
)

const validPack = `
rules:
  - id: no-fmt-println
    name: fmt.Println in library code
    category: quality
    severity: info
    message: "avoid {match}; use structured logging"
    pattern: 'fmt\.Println\('
    tags: [logging]
  - id: no-http
    category: security
    severity: warning
    message: plain http url
    pattern: 'http://'
`

func TestParse(t *testing.T) {
	defs, err := rulesdsl.Parse([]byte(validPack))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}

	info := defs[0].Info()
	if info.ID != "no-fmt-println" || info.Category != ecoguard.CategoryQuality || info.Severity != ecoguard.SeverityInfo {
		t.Errorf("unexpected info %+v", info)
	}

	if len(info.Tags) != 2 || info.Tags[0] != "custom" || info.Tags[1] != "logging" {
		t.Errorf("unexpected tags %v", info.Tags)
	}

	if defs[1].Info().Name != "no-http" {
		t.Errorf("name should default to the id, got %q", defs[1].Info().Name)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		pack string
		want string
	}{
		{
			name: "missing pattern",
			pack: "rules:\n  - {id: a, category: quality, severity: info, message: m}\n",
			want: "missing required fields",
		},
		{
			name: "reserved category",
			pack: "rules:\n  - {id: a, category: syntax, severity: info, message: m, pattern: x}\n",
			want: "reserved",
		},
		{
			name: "unknown severity",
			pack: "rules:\n  - {id: a, category: quality, severity: fatal, message: m, pattern: x}\n",
			want: "unknown severity",
		},
		{
			name: "bad pattern",
			pack: "rules:\n  - {id: a, category: quality, severity: info, message: m, pattern: '('}\n",
			want: "pattern",
		},
		{
			name: "duplicate id",
			pack: "rules:\n  - {id: a, category: quality, severity: info, message: m, pattern: x}\n" +
				"  - {id: a, category: green, severity: info, message: m, pattern: y}\n",
			want: "duplicate rule id",
		},
		{
			name: "not yaml",
			pack: "rules: [",
			want: "parse yaml",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rulesdsl.Parse([]byte(tc.pack))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestNewRule(t *testing.T) {
	defs, err := rulesdsl.Parse([]byte(validPack))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const source = "package sample\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"

	tree, err := ecoguard.ParseSource("main.go", []byte(source))
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}

	rule := defs[0].NewRule()

	issues, err := rule.Check(tree, source, "main.go")
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}

	issue := issues[0]
	if issue.Line != 4 || issue.Column == nil || *issue.Column != 1 {
		t.Errorf("unexpected location %s", issue)
	}

	if issue.Message != "avoid fmt.Println(; use structured logging" {
		t.Errorf("unexpected message %q", issue.Message)
	}

	if defs[0].NewRule() == rule {
		t.Error("each call must build a new rule")
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")

	if err := os.WriteFile(first, []byte(validPack), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(second, []byte(validPack), 0o600); err != nil {
		t.Fatal(err)
	}

	defs, err := rulesdsl.LoadAll([]string{first})
	if err != nil || len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d (%v)", len(defs), err)
	}

	if _, err = rulesdsl.LoadAll([]string{first, second}); err == nil || !strings.Contains(err.Error(), "duplicate rule id") {
		t.Errorf("expected a duplicate error across packs, got %v", err)
	}

	if _, err = rulesdsl.Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("expected a read failure, got %v", err)
	}
}
