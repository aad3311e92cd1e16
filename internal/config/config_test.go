package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/config"
)

func write(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ecoguard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OutputFormat != ecoguard.FormatTable || cfg.MinSeverity != ecoguard.SeverityInfo || !cfg.EnableGreen {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := write(t, `
output_format: json
min_severity: WARNING
workers: 3
analyzers: {green: false}
rules:
  long-line: {enabled: false}
  hardcoded-secret: {severity: error}
custom_rules: [rules/team.yaml, /abs/pack.yaml]
exclude: ["*_gen.go"]
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OutputFormat != ecoguard.FormatJSON || cfg.MinSeverity != ecoguard.SeverityWarning || cfg.Workers != 3 {
		t.Errorf("unexpected scalars %+v", cfg)
	}

	if cfg.EnableGreen || !cfg.EnableQuality || !cfg.EnableSecurity || !cfg.EnableAICode {
		t.Errorf("only green should be disabled, got %+v", cfg)
	}

	if enabled := cfg.Rules["long-line"].Enabled; enabled == nil || *enabled {
		t.Error("long-line should be disabled")
	}

	if severity := cfg.Rules["hardcoded-secret"].Severity; severity == nil || *severity != ecoguard.SeverityError {
		t.Error("hardcoded-secret severity should be overridden")
	}

	wantCustom := filepath.Join(filepath.Dir(path), "rules", "team.yaml")
	if len(cfg.CustomRules) != 2 || cfg.CustomRules[0] != wantCustom || cfg.CustomRules[1] != "/abs/pack.yaml" {
		t.Errorf("unexpected custom rules %v", cfg.CustomRules)
	}

	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "*_gen.go" {
		t.Errorf("unexpected exclude %v", cfg.Exclude)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := config.Load(write(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MinSeverity != ecoguard.SeverityInfo {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
		target  error
		want    string
	}{
		{name: "format", content: "output_format: xml\n", target: ecoguard.ErrUnknownFormat},
		{name: "severity", content: "min_severity: fatal\n", target: ecoguard.ErrUnknownSeverity},
		{name: "rule severity", content: "rules:\n  long-line: {severity: loud}\n", target: ecoguard.ErrUnknownSeverity},
		{name: "unknown key", content: "colour: red\n", want: "parse yaml"},
		{name: "negative workers", content: "workers: -2\n", target: ecoguard.ErrInvalidConfig},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(write(t, tc.content))
			if err == nil {
				t.Fatal("expected an error")
			}

			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Errorf("expected %v, got %v", tc.target, err)
			}

			if tc.want != "" && !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("expected a read failure, got %v", err)
	}
}
