// Package config loads ecoguard settings from a YAML file.
//
//	output_format: table
//	min_severity: info
//	workers: 8
//	analyzers: {quality: true, security: true, green: true, ai_code: false}
//	rules:
//	  long-line: {enabled: false}
//	  hardcoded-secret: {severity: error}
//	custom_rules: [./rules/team.yaml]
//	exclude: ["*_gen.go"]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ecoguard"
)

type analyzers struct {
	Quality  *bool `yaml:"quality"`
	Security *bool `yaml:"security"`
	Green    *bool `yaml:"green"`
	AICode   *bool `yaml:"ai_code"`
}

type rule struct {
	Enabled  *bool  `yaml:"enabled"`
	Severity string `yaml:"severity"`
}

type file struct {
	OutputFormat string          `yaml:"output_format"`
	OutputFile   string          `yaml:"output_file"`
	MinSeverity  string          `yaml:"min_severity"`
	Workers      int             `yaml:"workers"`
	Analyzers    analyzers       `yaml:"analyzers"`
	Rules        map[string]rule `yaml:"rules"`
	CustomRules  []string        `yaml:"custom_rules"`
	Exclude      []string        `yaml:"exclude"`
}

// Load returns the defaults overlaid with the settings of the file at path.
// An empty path returns the defaults. Unknown keys and values are rejected.
// Relative custom rule paths are resolved against the directory of the file.
func Load(path string) (ecoguard.Config, error) {
	cfg := ecoguard.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path is user-specified
	if err != nil {
		return cfg, fmt.Errorf("%w: config: %w", fault.ErrReadFailure, err)
	}

	if err = Apply(&cfg, data, filepath.Dir(path)); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Apply overlays the YAML document data onto cfg. base anchors relative custom rule paths.
func Apply(cfg *ecoguard.Config, data []byte, base string) error {
	var doc file

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}

	var errs []error

	if doc.OutputFormat != "" {
		format, err := ecoguard.ParseFormat(doc.OutputFormat)
		errs = append(errs, err)
		cfg.OutputFormat = format
	}

	if doc.OutputFile != "" {
		cfg.OutputFile = doc.OutputFile
	}

	if doc.MinSeverity != "" {
		severity, err := ecoguard.ParseSeverity(doc.MinSeverity)
		errs = append(errs, err)
		cfg.MinSeverity = severity
	}

	if doc.Workers != 0 {
		cfg.Workers = doc.Workers
	}

	setBool(&cfg.EnableQuality, doc.Analyzers.Quality)
	setBool(&cfg.EnableSecurity, doc.Analyzers.Security)
	setBool(&cfg.EnableGreen, doc.Analyzers.Green)
	setBool(&cfg.EnableAICode, doc.Analyzers.AICode)

	if len(doc.Rules) > 0 && cfg.Rules == nil {
		cfg.Rules = make(map[string]ecoguard.RuleConfig, len(doc.Rules))
	}

	for id, raw := range doc.Rules {
		override := ecoguard.RuleConfig{Enabled: raw.Enabled}

		if raw.Severity != "" {
			severity, err := ecoguard.ParseSeverity(raw.Severity)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %q: %w", id, err))
			}

			override.Severity = &severity
		}

		cfg.Rules[id] = override
	}

	for _, custom := range doc.CustomRules {
		if !filepath.IsAbs(custom) && base != "" {
			custom = filepath.Join(base, custom)
		}

		cfg.CustomRules = append(cfg.CustomRules, custom)
	}

	cfg.Exclude = append(cfg.Exclude, doc.Exclude...)

	if err := errors.Join(errs...); err != nil {
		return err
	}

	return cfg.Validate()
}

func setBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
