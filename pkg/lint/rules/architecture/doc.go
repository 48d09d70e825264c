// Package architecture provides module dependency rules.
//
// Constraint rules (configured per constraint):
//
//   - AG01: Forbidden Dependency - Module references a forbidden module directly
//   - AG02: Forbidden Transitive Dependency - Module reaches a forbidden module through any chain
//   - AG03: Forbidden Use - Module activates a forbidden module with `use`
//
// Graph rules:
//
//   - AG04: Dependency Cycle - Modules that depend on each other
package architecture
