package core

// Constraint declares an architectural rule instance: modules matching Modules
// must not reach modules matching Forbidden in the way checked by Rule.
type Constraint struct {
	// Name identifies the constraint in reports. Defaults to the rule ID.
	Name string `koanf:"name" yaml:"name,omitempty" json:"name,omitempty"`

	// Rule is the rule ID that evaluates the constraint, e.g. "AG02".
	Rule string `koanf:"rule" yaml:"rule" json:"rule"`

	// Modules selects subject modules (dotted globs: "MyApp.Web.**").
	Modules []string `koanf:"modules" yaml:"modules" json:"modules"`

	// Forbidden selects modules the subjects must not depend on.
	Forbidden []string `koanf:"forbidden" yaml:"forbidden" json:"forbidden"`

	// Except removes subjects from the selection.
	Except []string `koanf:"except" yaml:"except,omitempty" json:"except,omitempty"`

	// Severity overrides the rule's default severity for this constraint.
	Severity string `koanf:"severity" yaml:"severity,omitempty" json:"severity,omitempty"`
}

// DisplayName returns Name, falling back to the rule ID.
func (c Constraint) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Rule
}

// LintConfig holds rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled" yaml:"disabled,omitempty"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity" yaml:"severity,omitempty"`
}
