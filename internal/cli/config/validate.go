package config

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
	_ "github.com/leapstack-labs/modguard/pkg/lint/rules" // register rules for ID validation
)

// validOutputs lists accepted values for the output key.
var validOutputs = map[string]bool{
	"":         true,
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
}

// Validate checks if the configuration is valid.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SourceDirs) == 0 {
		errs = append(errs, fmt.Errorf("source_dirs must not be empty"))
	}
	if len(c.Include) == 0 {
		errs = append(errs, fmt.Errorf("include must not be empty"))
	}
	for _, p := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("invalid glob pattern %q", p))
		}
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("max_file_size must be >= 0, got %d", c.MaxFileSize))
	}
	if !validOutputs[c.OutputFormat] {
		errs = append(errs, fmt.Errorf("unknown output format %q (auto|text|markdown|json)", c.OutputFormat))
	}

	if c.Lint != nil {
		for id, sev := range c.Lint.Severity {
			if _, ok := core.ParseSeverity(sev); !ok {
				errs = append(errs, fmt.Errorf("lint.severity.%s: invalid severity %q", id, sev))
			}
		}
	}

	for i, con := range c.Constraints {
		if err := validateConstraint(con); err != nil {
			errs = append(errs, fmt.Errorf("constraints[%d] (%s): %w", i, con.DisplayName(), err))
		}
	}

	return errors.Join(errs...)
}

func validateConstraint(c Constraint) error {
	if c.Rule == "" {
		return fmt.Errorf("rule is required")
	}
	rule, ok := lint.GetRuleByID(c.Rule)
	if !ok {
		return fmt.Errorf("unknown rule %q", c.Rule)
	}
	if _, ok := rule.(lint.ConstraintRule); !ok {
		return fmt.Errorf("rule %s does not take constraints", c.Rule)
	}
	if len(c.Modules) == 0 {
		return fmt.Errorf("modules must not be empty")
	}
	if len(c.Forbidden) == 0 {
		return fmt.Errorf("forbidden must not be empty")
	}
	if _, err := lint.Compile(c); err != nil {
		return err
	}
	if c.Severity != "" {
		if _, ok := core.ParseSeverity(c.Severity); !ok {
			return fmt.Errorf("invalid severity %q", c.Severity)
		}
	}
	return nil
}
