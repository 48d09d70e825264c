package lint

import (
	"strings"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string        `json:"rule_id"`
	Severity core.Severity `json:"severity"`
	Message  string        `json:"message"`

	// Module is the subject module; FilePath is where it is declared.
	Module   modgraph.ModuleID `json:"module"`
	FilePath string            `json:"file_path,omitempty"`

	// Target is the offending module, if any.
	Target modgraph.ModuleID `json:"target,omitempty"`

	// Path is a witness chain from Module to Target, or the cycle for AG04.
	Path []modgraph.ModuleID `json:"path,omitempty"`

	// Constraint names the declared constraint that produced the finding.
	Constraint string `json:"constraint,omitempty"`
}

// PathString renders the diagnostic's witness path.
func (d Diagnostic) PathString() string {
	return FormatPath(d.Path)
}

// FormatPath renders a module chain as "A → B → C".
func FormatPath(path []modgraph.ModuleID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, " → ")
}

// RuleDef is a data-driven rule definition.
// Exactly one of CheckConstraint and CheckGraph is set.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "AG01"
	Name        string        // Human-readable name, e.g., "forbidden-dependency"
	Group       string        // Category, e.g., "architecture"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity

	CheckConstraint CheckConstraintFunc
	CheckGraph      CheckGraphFunc

	// Documentation fields for richer rule documentation
	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the correct pattern
	Fix         string // How to fix violations (when not obvious)
}

// CheckConstraintFunc evaluates one declared constraint, already compiled,
// against the graph.
type CheckConstraintFunc func(ctx *Context, sel *Selection) []Diagnostic

// CheckGraphFunc inspects the whole graph.
type CheckGraphFunc func(ctx *Context) []Diagnostic
