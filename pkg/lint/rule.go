package lint

import "github.com/leapstack-labs/modguard/pkg/core"

// Rule is the base interface all rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "AG01"
	ID() string

	// Name returns the human-readable name, e.g., "forbidden-dependency"
	Name() string

	// Group returns the category, e.g., "architecture"
	Group() string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the default severity for this rule
	DefaultSeverity() core.Severity

	// Documentation methods
	Rationale() string
	BadExample() string
	GoodExample() string
	Fix() string
}

// ConstraintRule evaluates user-declared constraints.
type ConstraintRule interface {
	Rule
	CheckConstraint(ctx *Context, sel *Selection) []Diagnostic
}

// GraphRule analyzes the whole module graph.
type GraphRule interface {
	Rule
	CheckGraph(ctx *Context) []Diagnostic
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) core.RuleInfo {
	info := core.RuleInfo{
		ID:              r.ID(),
		Name:            r.Name(),
		Group:           r.Group(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		Rationale:       r.Rationale(),
		BadExample:      r.BadExample(),
		GoodExample:     r.GoodExample(),
		Fix:             r.Fix(),
	}

	switch r.(type) {
	case ConstraintRule:
		info.Type = core.RuleTypeConstraint
	case GraphRule:
		info.Type = core.RuleTypeGraph
	}
	return info
}

// ruleDefBase holds the shared metadata of a wrapped RuleDef.
type ruleDefBase struct {
	def RuleDef
}

func (w ruleDefBase) ID() string                     { return w.def.ID }
func (w ruleDefBase) Name() string                   { return w.def.Name }
func (w ruleDefBase) Group() string                  { return w.def.Group }
func (w ruleDefBase) Description() string            { return w.def.Description }
func (w ruleDefBase) DefaultSeverity() core.Severity { return w.def.Severity }
func (w ruleDefBase) Rationale() string              { return w.def.Rationale }
func (w ruleDefBase) BadExample() string             { return w.def.BadExample }
func (w ruleDefBase) GoodExample() string            { return w.def.GoodExample }
func (w ruleDefBase) Fix() string                    { return w.def.Fix }

// Unwrap returns the underlying RuleDef.
func (w ruleDefBase) Unwrap() RuleDef { return w.def }

type wrappedConstraintRule struct{ ruleDefBase }

func (w wrappedConstraintRule) CheckConstraint(ctx *Context, sel *Selection) []Diagnostic {
	return w.def.CheckConstraint(ctx, sel)
}

type wrappedGraphRule struct{ ruleDefBase }

func (w wrappedGraphRule) CheckGraph(ctx *Context) []Diagnostic {
	return w.def.CheckGraph(ctx)
}

// WrapRuleDef wraps a RuleDef as a ConstraintRule or GraphRule.
// It returns nil when the definition has no check function.
func WrapRuleDef(def RuleDef) Rule {
	switch {
	case def.CheckConstraint != nil:
		return wrappedConstraintRule{ruleDefBase{def}}
	case def.CheckGraph != nil:
		return wrappedGraphRule{ruleDefBase{def}}
	default:
		return nil
	}
}
