// Package rulesdsl loads custom line-pattern rules from YAML rule packs.
//
//	rules:
//	  - id: no-fmt-println
//	    name: fmt.Println in library code
//	    category: quality
//	    severity: info
//	    message: "avoid {match}; use structured logging"
//	    pattern: 'fmt\.Println\('
//	    tags: [logging]
package rulesdsl

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ecoguard"
)

// MatchPlaceholder in a message is replaced with the matched text.
const MatchPlaceholder = "{match}"

var (
	errMissingFields    = errors.New("missing required fields (id/category/severity/message/pattern)")
	errReservedCategory = errors.New("category is reserved for the engine")
	errDuplicateID      = errors.New("duplicate rule id")
)

type pack struct {
	Rules []entry `yaml:"rules"`
}

type entry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Severity    string   `yaml:"severity"`
	Message     string   `yaml:"message"`
	Pattern     string   `yaml:"pattern"`
	Tags        []string `yaml:"tags"`
}

// Definition is a compiled custom rule. It is immutable and safe to share; NewRule
// builds the per-analyzer instances.
type Definition struct {
	info    ecoguard.RuleInfo
	message string
	pattern *regexp.Regexp
}

// Load reads and compiles a rule pack file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // rule packs are user-specified
	if err != nil {
		return nil, fmt.Errorf("%w: rule pack: %w", fault.ErrReadFailure, err)
	}

	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return defs, nil
}

// LoadAll loads several packs. Rule ids must be unique across all of them.
func LoadAll(paths []string) ([]Definition, error) {
	var (
		out  []Definition
		seen = make(map[string]string)
	)

	for _, path := range paths {
		defs, err := Load(path)
		if err != nil {
			return nil, err
		}

		for _, def := range defs {
			if previous, dup := seen[def.info.ID]; dup {
				return nil, fmt.Errorf("%w %q in %s (first defined in %s)", errDuplicateID, def.info.ID, path, previous)
			}

			seen[def.info.ID] = path
		}

		out = append(out, defs...)
	}

	return out, nil
}

// Parse compiles the rules of a YAML rule pack.
func Parse(data []byte) ([]Definition, error) {
	var doc pack
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	seen := make(map[string]bool, len(doc.Rules))
	defs := make([]Definition, 0, len(doc.Rules))

	for _, raw := range doc.Rules {
		def, err := compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", raw.ID, err)
		}

		if seen[raw.ID] {
			return nil, fmt.Errorf("%w %q", errDuplicateID, raw.ID)
		}

		seen[raw.ID] = true

		defs = append(defs, def)
	}

	return defs, nil
}

func compile(raw entry) (Definition, error) {
	if raw.ID == "" || raw.Category == "" || raw.Severity == "" || raw.Message == "" || raw.Pattern == "" {
		return Definition{}, errMissingFields
	}

	category, err := ecoguard.ParseCategory(raw.Category)
	if err != nil {
		return Definition{}, err
	}

	if category.Reserved() {
		return Definition{}, fmt.Errorf("%w: %s", errReservedCategory, category)
	}

	severity, err := ecoguard.ParseSeverity(raw.Severity)
	if err != nil {
		return Definition{}, err
	}

	pattern, err := regexp.Compile(raw.Pattern)
	if err != nil {
		return Definition{}, fmt.Errorf("pattern: %w", err)
	}

	name := raw.Name
	if name == "" {
		name = raw.ID
	}

	return Definition{
		info: ecoguard.RuleInfo{
			ID:          raw.ID,
			Name:        name,
			Description: raw.Description,
			Category:    category,
			Severity:    severity,
			Tags:        append([]string{"custom"}, raw.Tags...),
		},
		message: raw.Message,
		pattern: pattern,
	}, nil
}

func (d Definition) Info() ecoguard.RuleInfo {
	return d.info
}

// NewRule returns a fresh rule reporting every line matching the pattern.
func (d Definition) NewRule() *ecoguard.FuncRule {
	return ecoguard.NewFuncRule(d.info, func(rule *ecoguard.FuncRule, _ *ecoguard.Tree, source, path string) ([]ecoguard.Issue, error) {
		var issues []ecoguard.Issue

		for idx, line := range strings.Split(source, "\n") {
			loc := d.pattern.FindStringIndex(line)
			if loc == nil {
				continue
			}

			message := strings.ReplaceAll(d.message, MatchPlaceholder, line[loc[0]:loc[1]])
			issues = append(issues, rule.IssueAt(path, idx+1, loc[0], message))
		}

		return issues, nil
	})
}
