// Package catalog assembles the built-in and custom rules into configured analyzers.
package catalog

import (
	"slices"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/audit/aicode"
	"github.com/farcloser/ecoguard/internal/audit/green"
	"github.com/farcloser/ecoguard/internal/audit/quality"
	"github.com/farcloser/ecoguard/internal/audit/security"
	"github.com/farcloser/ecoguard/internal/audit/shared"
	"github.com/farcloser/ecoguard/internal/rulesdsl"
)

type analyzerSpec struct {
	name        string
	description string
	category    ecoguard.Category
	rules       func() []ecoguard.Rule
}

//nolint:gochecknoglobals // configuration data, effectively const
var analyzerSpecs = []analyzerSpec{
	{shared.AnalyzerQuality, "Maintainability and readability checks", ecoguard.CategoryQuality, quality.Rules},
	{shared.AnalyzerSecurity, "Risky constructs and leaked credentials", ecoguard.CategorySecurity, security.Rules},
	{shared.AnalyzerGreen, "Avoidable CPU and memory work", ecoguard.CategoryGreen, green.Rules},
	{shared.AnalyzerAICode, "Leftovers typical of generated code", ecoguard.CategoryAICode, aicode.Rules},
}

// Entry describes one rule as configured.
type Entry struct {
	Analyzer string
	Info     ecoguard.RuleInfo
	Enabled  bool
	Custom   bool
}

// New builds one analyzer per category with fresh rule instances, applying the analyzer
// switches and per-rule overrides of cfg. Custom rules join the analyzer of their category.
func New(cfg ecoguard.Config, custom []rulesdsl.Definition) []*ecoguard.Analyzer {
	out := make([]*ecoguard.Analyzer, 0, len(analyzerSpecs))

	for _, spec := range analyzerSpecs {
		analyzer := ecoguard.NewAnalyzer(spec.name, spec.description)
		analyzer.SetEnabled(cfg.CategoryEnabled(spec.category))

		for _, rule := range spec.rules() {
			analyzer.RegisterRule(rule)
		}

		for _, def := range custom {
			if def.Info().Category == spec.category {
				analyzer.RegisterRule(def.NewRule())
			}
		}

		applyOverrides(analyzer, cfg.Rules)

		out = append(out, analyzer)
	}

	return out
}

// Factory returns an AnalyzerFactory building a fresh New set on every call.
func Factory(cfg ecoguard.Config, custom []rulesdsl.Definition) ecoguard.AnalyzerFactory {
	return func() ([]*ecoguard.Analyzer, error) {
		return New(cfg, custom), nil
	}
}

func applyOverrides(analyzer *ecoguard.Analyzer, overrides map[string]ecoguard.RuleConfig) {
	for id, override := range overrides {
		rule, ok := analyzer.Rule(id)
		if !ok {
			continue
		}

		if override.Enabled != nil {
			if *override.Enabled {
				analyzer.EnableRule(id)
			} else {
				analyzer.DisableRule(id)
			}
		}

		if override.Severity != nil {
			if overrider, ok := rule.(ecoguard.SeverityOverrider); ok {
				overrider.SetSeverity(*override.Severity)
			}
		}
	}
}

// Entries lists every rule in analyzer order with its effective state.
// A rule is enabled only when both it and its analyzer are.
func Entries(cfg ecoguard.Config, custom []rulesdsl.Definition) []Entry {
	customIDs := make(map[string]bool, len(custom))
	for _, def := range custom {
		customIDs[def.Info().ID] = true
	}

	var out []Entry

	for _, analyzer := range New(cfg, custom) {
		for _, rule := range analyzer.Rules() {
			out = append(out, Entry{
				Analyzer: analyzer.Name(),
				Info:     rule.Info(),
				Enabled:  analyzer.Enabled() && rule.Enabled(),
				Custom:   customIDs[rule.Info().ID],
			})
		}
	}

	return out
}

// UnknownRules returns the configured rule ids matching no rule, sorted.
func UnknownRules(cfg ecoguard.Config, custom []rulesdsl.Definition) []string {
	known := make(map[string]bool)
	for _, entry := range Entries(cfg, custom) {
		known[entry.Info.ID] = true
	}

	var unknown []string

	for id := range cfg.Rules {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}

	slices.Sort(unknown)

	return unknown
}
