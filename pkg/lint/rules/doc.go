// Package rules wires every built-in rule group into the global lint registry.
//
// Rules are organized by group:
//   - architecture: dependency constraints and cycles (AG01-AG04)
//
// To register all rules, import this package with a blank identifier:
//
//	import _ "github.com/leapstack-labs/modguard/pkg/lint/rules"
package rules
