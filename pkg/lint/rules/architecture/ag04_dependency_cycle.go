package architecture

import (
	"fmt"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "AG04",
		Name:        "dependency-cycle",
		Group:       "architecture",
		Description: "Modules depend on each other in a cycle",
		Severity:    core.SeverityWarning,
		CheckGraph:  checkDependencyCycle,
		Rationale: "Modules in a cycle cannot be understood, tested or recompiled in isolation. " +
			"A change to any of them recompiles all of them.",
		BadExample: `defmodule A do
  def a, do: B.b()
end

defmodule B do
  def b, do: A.a()
end`,
		Fix: "Extract the shared part into a third module both can depend on.",
	})
}

// checkDependencyCycle reports one witness per strongly connected group,
// attached to the group's smallest module.
func checkDependencyCycle(ctx *lint.Context) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, cycle := range ctx.Graph().Cycles() {
		head := cycle[0]
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "AG04",
			Severity: core.SeverityWarning,
			Message:  fmt.Sprintf("Dependency cycle: %s", lint.FormatPath(cycle)),
			Module:   head,
			Target:   cycle[1],
			FilePath: ctx.FilePath(head),
			Path:     cycle,
		})
	}
	return diagnostics
}
