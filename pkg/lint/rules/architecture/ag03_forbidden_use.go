package architecture

import (
	"fmt"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:              "AG03",
		Name:            "forbidden-use",
		Group:           "architecture",
		Description:     "Module uses (mixes in) a forbidden module",
		Severity:        core.SeverityError,
		CheckConstraint: checkForbiddenUse,
		Rationale: "`use` injects code from another module into the subject. " +
			"Adopting a forbidden module's behaviour is stronger than calling it.",
		BadExample: `defmodule MyApp.Accounts.User do
  use MyApp.Web, :controller
end`,
		GoodExample: `defmodule MyApp.Accounts.User do
  use Ecto.Schema
end`,
	})
}

func checkForbiddenUse(ctx *lint.Context, sel *lint.Selection) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, subject := range ctx.Subjects(sel) {
		for _, used := range ctx.Graph().Activations(subject).Sorted() {
			if !sel.IsForbidden(subject, used) {
				continue
			}
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "AG03",
				Severity: core.SeverityError,
				Message:  fmt.Sprintf("Module '%s' uses forbidden module '%s'", subject, used),
				Module:   subject,
				Target:   used,
				FilePath: ctx.FilePath(subject),
				Path:     []modgraph.ModuleID{subject, used},
			})
		}
	}
	return diagnostics
}
