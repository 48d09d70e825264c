package lint

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/modguard/pkg/core"
)

// Analyzer runs registered rules over a module graph.
type Analyzer struct {
	config *Config
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// Analyze evaluates every constraint through its rule, then every enabled
// graph rule. Output is sorted by file, module, rule and target.
//
// A constraint naming an unknown rule or a graph rule is an error; so is an
// invalid pattern.
func (a *Analyzer) Analyze(ctx *Context, constraints []core.Constraint) ([]Diagnostic, error) {
	var diagnostics []Diagnostic

	for i, c := range constraints {
		rule, ok := GetRuleByID(c.Rule)
		if !ok {
			return nil, fmt.Errorf("constraint %d (%s): unknown rule %q", i, c.DisplayName(), c.Rule)
		}
		cr, ok := rule.(ConstraintRule)
		if !ok {
			return nil, fmt.Errorf("constraint %d (%s): rule %s does not take constraints", i, c.DisplayName(), c.Rule)
		}
		if a.config.IsDisabled(rule.ID()) {
			continue
		}

		sel, err := Compile(c)
		if err != nil {
			return nil, fmt.Errorf("constraint %d (%s): %w", i, c.DisplayName(), err)
		}
		diags := cr.CheckConstraint(ctx, sel)

		severity := a.config.GetSeverity(rule.ID(), rule.DefaultSeverity())
		if c.Severity != "" {
			sev, ok := core.ParseSeverity(c.Severity)
			if !ok {
				return nil, fmt.Errorf("constraint %d (%s): invalid severity %q", i, c.DisplayName(), c.Severity)
			}
			severity = sev
		}
		for j := range diags {
			diags[j].Severity = severity
			diags[j].Constraint = c.DisplayName()
		}
		diagnostics = append(diagnostics, diags...)
	}

	for _, rule := range GetGraphRules() {
		if a.config.IsDisabled(rule.ID()) {
			continue
		}
		diags := rule.CheckGraph(ctx)
		for j := range diags {
			diags[j].Severity = a.config.GetSeverity(rule.ID(), diags[j].Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}

	SortDiagnostics(diagnostics)

	hits, misses := ctx.CacheStats()
	ctx.Logger().Debug("analysis completed",
		"constraints", len(constraints),
		"diagnostics", len(diagnostics),
		"closure_hits", hits,
		"closure_misses", misses)

	return diagnostics, nil
}

// SortDiagnostics orders diagnostics deterministically.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Target < b.Target
	})
}

// CountBySeverity tallies diagnostics per severity.
func CountBySeverity(diags []Diagnostic) map[core.Severity]int {
	counts := make(map[core.Severity]int)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}
