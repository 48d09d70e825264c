package architecture

import (
	"fmt"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:              "AG02",
		Name:            "forbidden-transitive-dependency",
		Group:           "architecture",
		Description:     "Module reaches a forbidden module through a chain of dependencies",
		Severity:        core.SeverityError,
		CheckConstraint: checkForbiddenTransitive,
		Rationale: "Going through an intermediate module does not remove the coupling: " +
			"a change in the forbidden module can still break the subject.",
		BadExample: `# MyApp.Web -> MyApp.Accounts -> MyApp.Repo
constraints:
  - rule: AG02
    modules: ["MyApp.Web.**"]
    forbidden: ["MyApp.Repo"]`,
		Fix: "Break the chain reported in the message, usually by moving the offending call behind a boundary module.",
	})
}

// checkForbiddenTransitive reports every forbidden module in the subject's
// closure, with a witness chain. The subject itself is excluded from its closure.
func checkForbiddenTransitive(ctx *lint.Context, sel *lint.Selection) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, subject := range ctx.Subjects(sel) {
		reach := ctx.Closure(subject).Clone()
		reach.Remove(subject)

		for _, target := range reach.Sorted() {
			if !sel.IsForbidden(subject, target) {
				continue
			}
			path, ok := ctx.Graph().FindPath(subject, target)
			if !ok {
				continue
			}
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "AG02",
				Severity: core.SeverityError,
				Message: fmt.Sprintf("Module '%s' depends on forbidden module '%s' via %s",
					subject, target, lint.FormatPath(path)),
				Module:   subject,
				Target:   target,
				FilePath: ctx.FilePath(subject),
				Path:     path,
			})
		}
	}
	return diagnostics
}
