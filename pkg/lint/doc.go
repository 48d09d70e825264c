// Package lint provides the architecture rule framework.
//
// # Architecture
//
// The lint package follows a modular architecture with two layers:
//
//  1. Root package (pkg/lint/): shared contracts, the rule registry, module
//     patterns, the evaluation Context and the Analyzer
//  2. Rule packages (pkg/lint/rules/...): rule implementations registered from init()
//
// # Rule Kinds
//
// Constraint rules are driven by user-declared constraints ("MyApp.Web.** must
// not depend on MyApp.Repo"). Graph rules inspect the whole module graph and
// need no configuration.
//
// # Rule Registration
//
// Rules are registered via init() functions when their packages are imported:
//
//	import _ "github.com/leapstack-labs/modguard/pkg/lint/rules"
//
// # Configuration
//
// Use Config to control which rules are enabled and their severity:
//
//	config := lint.NewConfig()
//	config.Disable("AG04")
//	config.SetSeverity("AG02", core.SeverityError)
package lint
