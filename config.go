package ecoguard

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Format selects how results are rendered.
type Format int

const (
	FormatTable Format = iota
	FormatText
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatTable:
		return "table"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	}

	return "unknown"
}

// ParseFormat converts a string to a Format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: json, text, table)", ErrUnknownFormat, s)
	}
}

// RuleConfig overrides the defaults of a single rule. Nil fields keep the rule defaults.
type RuleConfig struct {
	Enabled  *bool
	Severity *Severity
}

// Config drives an analysis run.
type Config struct {
	OutputFormat Format
	OutputFile   string   // empty writes to stdout
	MinSeverity  Severity // issues below are hidden from output, not from scoring

	EnableQuality  bool
	EnableSecurity bool
	EnableGreen    bool
	EnableAICode   bool

	Workers     int                   // concurrent files in a directory scan (default: NumCPU)
	Rules       map[string]RuleConfig // keyed by rule id
	CustomRules []string              // paths of YAML rule packs
	Exclude     []string              // glob patterns of paths to skip
}

// DefaultConfig enables every analyzer and renders a table of info-and-above issues.
func DefaultConfig() Config {
	return Config{
		OutputFormat:   FormatTable,
		MinSeverity:    SeverityInfo,
		EnableQuality:  true,
		EnableSecurity: true,
		EnableGreen:    true,
		EnableAICode:   true,
		Workers:        runtime.NumCPU(),
	}
}

// CategoryEnabled reports whether the analyzer for category should run.
// Reserved categories are always enabled.
func (c Config) CategoryEnabled(category Category) bool {
	switch category {
	case CategoryQuality:
		return c.EnableQuality
	case CategorySecurity:
		return c.EnableSecurity
	case CategoryGreen:
		return c.EnableGreen
	case CategoryAICode:
		return c.EnableAICode
	case CategorySyntax, CategorySystem:
		return true
	}

	return false
}

// Validate rejects values no analysis could honor.
func (c Config) Validate() error {
	var errs []error

	if c.OutputFormat < FormatTable || c.OutputFormat > FormatJSON {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownFormat, int(c.OutputFormat)))
	}

	if c.MinSeverity.Score() == 0 {
		errs = append(errs, fmt.Errorf("min severity: %w: %d", ErrUnknownSeverity, int(c.MinSeverity)))
	}

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}

	for id, rule := range c.Rules {
		if rule.Severity != nil && rule.Severity.Score() == 0 {
			errs = append(errs, fmt.Errorf("rule %q: %w: %d", id, ErrUnknownSeverity, int(*rule.Severity)))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.MinSeverity == 0 {
		cfg.MinSeverity = SeverityInfo
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
}
