package architecture

import (
	"fmt"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:              "AG01",
		Name:            "forbidden-dependency",
		Group:           "architecture",
		Description:     "Module directly references a forbidden module",
		Severity:        core.SeverityError,
		CheckConstraint: checkForbiddenDependency,
		Rationale: "Layer boundaries only hold if the code on one side never names the other. " +
			"A direct reference couples the modules at compile time.",
		BadExample: `defmodule MyApp.Web.UserController do
  def index(conn, _), do: json(conn, MyApp.Repo.all(MyApp.User))
end`,
		GoodExample: `defmodule MyApp.Web.UserController do
  def index(conn, _), do: json(conn, MyApp.Accounts.list_users())
end`,
		Fix: "Call through a module the subject is allowed to depend on.",
	})
}

func checkForbiddenDependency(ctx *lint.Context, sel *lint.Selection) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, subject := range ctx.Subjects(sel) {
		for _, dep := range ctx.Graph().DirectDependencies(subject).Sorted() {
			if !sel.IsForbidden(subject, dep) {
				continue
			}
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "AG01",
				Severity: core.SeverityError,
				Message:  fmt.Sprintf("Module '%s' depends directly on forbidden module '%s'", subject, dep),
				Module:   subject,
				Target:   dep,
				FilePath: ctx.FilePath(subject),
				Path:     []modgraph.ModuleID{subject, dep},
			})
		}
	}
	return diagnostics
}
