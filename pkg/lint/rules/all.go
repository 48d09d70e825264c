package rules

import (
	// Blank imports trigger init() functions that register rules with the global registry.
	_ "github.com/leapstack-labs/modguard/pkg/lint/rules/architecture" // registers AG* rules
)
