package main

import "github.com/farcloser/ecoguard"

// ruleBreakdown tracks per-rule severity counts for the digest.
type ruleBreakdown struct {
	RuleID string
	Files  int
	Total  int
	counts map[ecoguard.Severity]int
}

func (b *ruleBreakdown) add(severity ecoguard.Severity) {
	if b.counts == nil {
		b.counts = make(map[ecoguard.Severity]int, len(ecoguard.Severities))
	}

	b.Total++
	b.counts[severity]++
}

// digestEntry is one affected file listed by digest --rule.
type digestEntry struct {
	file   string
	worst  ecoguard.Severity
	issues []ecoguard.Issue
}
