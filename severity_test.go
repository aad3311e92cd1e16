package ecoguard_test

import (
	"errors"
	"testing"

	"github.com/farcloser/ecoguard"
)

func TestSeverityScoresIncrease(t *testing.T) {
	previous := 0

	for _, severity := range ecoguard.Severities {
		if severity.Score() <= previous {
			t.Errorf("%s score %d is not above %d", severity, severity.Score(), previous)
		}

		previous = severity.Score()
	}

	if ecoguard.SeverityDebug.Score() != 1 || ecoguard.SeverityCritical.Score() != 5 {
		t.Errorf("unexpected score range %d..%d", ecoguard.SeverityDebug.Score(), ecoguard.SeverityCritical.Score())
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  ecoguard.Severity
	}{
		{"debug", ecoguard.SeverityDebug},
		{"INFO", ecoguard.SeverityInfo},
		{" warning ", ecoguard.SeverityWarning},
		{"Error", ecoguard.SeverityError},
		{"critical", ecoguard.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ecoguard.ParseSeverity(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := ecoguard.ParseSeverity("fatal"); !errors.Is(err, ecoguard.ErrUnknownSeverity) {
		t.Errorf("expected ErrUnknownSeverity, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	for _, category := range ecoguard.Categories {
		got, err := ecoguard.ParseCategory(category.String())
		if err != nil {
			t.Fatalf("%s: %v", category, err)
		}

		if got != category {
			t.Errorf("got %s, want %s", got, category)
		}
	}

	if _, err := ecoguard.ParseCategory("style"); !errors.Is(err, ecoguard.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}

	if !ecoguard.CategorySyntax.Reserved() || ecoguard.CategoryGreen.Reserved() {
		t.Error("only syntax and system are reserved")
	}
}

func TestSeverityText(t *testing.T) {
	var severity ecoguard.Severity
	if err := severity.UnmarshalText([]byte("warning")); err != nil {
		t.Fatal(err)
	}

	text, err := severity.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	if string(text) != "warning" {
		t.Errorf("got %q", text)
	}

	if _, err := ecoguard.Severity(42).MarshalText(); err == nil {
		t.Error("expected an error for an out of range severity")
	}
}
