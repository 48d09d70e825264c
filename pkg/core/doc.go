// Package core defines the shared language of modguard.
//
// This package contains:
//   - Diagnostic severity levels
//   - Rule metadata (RuleInfo)
//   - Architecture constraint and lint configuration types
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
