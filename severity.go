package ecoguard

import (
	"fmt"
	"strings"
)

// Severity indicates how bad an issue is. Values are ordered: a higher Severity is worse.
type Severity int

const (
	SeverityDebug Severity = iota + 1
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

// Severities lists every severity from least to most severe.
//
//nolint:gochecknoglobals // configuration data, effectively const
var Severities = []Severity{SeverityDebug, SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	}

	return "unknown"
}

// Score is the fixed numeric weight of the severity, from 1 (debug) to 5 (critical).
func (s Severity) Score() int {
	if s < SeverityDebug || s > SeverityCritical {
		return 0
	}

	return int(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if s.Score() == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return SeverityDebug, nil
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: debug, info, warning, error, critical)", ErrUnknownSeverity, s)
	}
}

// Category classifies what kind of concern an issue raises.
type Category int

const (
	CategoryQuality Category = iota + 1
	CategorySecurity
	CategoryGreen
	CategoryAICode
	// CategorySyntax and CategorySystem are reserved for engine-level failures.
	CategorySyntax
	CategorySystem
)

// Categories lists every category in display order.
//
//nolint:gochecknoglobals // configuration data, effectively const
var Categories = []Category{
	CategoryQuality,
	CategorySecurity,
	CategoryGreen,
	CategoryAICode,
	CategorySyntax,
	CategorySystem,
}

func (c Category) String() string {
	switch c {
	case CategoryQuality:
		return "quality"
	case CategorySecurity:
		return "security"
	case CategoryGreen:
		return "green"
	case CategoryAICode:
		return "ai_code"
	case CategorySyntax:
		return "syntax"
	case CategorySystem:
		return "system"
	}

	return "unknown"
}

// Reserved reports whether the category is kept for the engine itself.
func (c Category) Reserved() bool {
	return c == CategorySyntax || c == CategorySystem
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if c < CategoryQuality || c > CategorySystem {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}

	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// ParseCategory converts a category name (case-insensitive) to a Category value.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quality":
		return CategoryQuality, nil
	case "security":
		return CategorySecurity, nil
	case "green":
		return CategoryGreen, nil
	case "ai_code", "ai-code":
		return CategoryAICode, nil
	case "syntax":
		return CategorySyntax, nil
	case "system":
		return CategorySystem, nil
	default:
		return 0, fmt.Errorf(
			"%w %q (valid: quality, security, green, ai_code, syntax, system)",
			ErrUnknownCategory,
			s,
		)
	}
}
