package ecoguard_test

import (
	"errors"
	"testing"

	"github.com/farcloser/ecoguard"
)

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]ecoguard.Format{
		"":      ecoguard.FormatTable,
		"table": ecoguard.FormatTable,
		"TEXT":  ecoguard.FormatText,
		"json":  ecoguard.FormatJSON,
	} {
		got, err := ecoguard.ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("%q: got %s, %v", input, got, err)
		}
	}

	if _, err := ecoguard.ParseFormat("xml"); !errors.Is(err, ecoguard.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := ecoguard.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	bad := ecoguard.Severity(9)
	cfg.MinSeverity = 0
	cfg.OutputFormat = ecoguard.Format(7)
	cfg.Rules = map[string]ecoguard.RuleConfig{"long-line": {Severity: &bad}}

	err := cfg.Validate()
	if !errors.Is(err, ecoguard.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	if !errors.Is(err, ecoguard.ErrUnknownFormat) || !errors.Is(err, ecoguard.ErrUnknownSeverity) {
		t.Errorf("every problem should be reported: %v", err)
	}
}

func TestCategoryEnabled(t *testing.T) {
	cfg := ecoguard.DefaultConfig()
	cfg.EnableGreen = false

	if cfg.CategoryEnabled(ecoguard.CategoryGreen) || !cfg.CategoryEnabled(ecoguard.CategorySecurity) {
		t.Error("unexpected analyzer gating")
	}

	if !cfg.CategoryEnabled(ecoguard.CategorySyntax) {
		t.Error("reserved categories are always on")
	}

	if opts := cfg.ScanOptions(); opts.Workers <= 0 {
		t.Errorf("workers should default to a positive value, got %d", opts.Workers)
	}
}
