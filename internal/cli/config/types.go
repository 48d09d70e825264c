// Package config provides configuration management for the modguard CLI.
//
// Configuration is layered with koanf: built-in defaults, then modguard.yaml,
// then MODGUARD_* environment variables, then explicitly set flags.
// The shared lint and constraint types live in pkg/core and are re-exported
// here via type aliases for convenience.
package config

import (
	"github.com/leapstack-labs/modguard/internal/engine"
	"github.com/leapstack-labs/modguard/pkg/core"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = core.LintConfig

// Constraint is an alias for the shared constraint declaration.
type Constraint = core.Constraint

// Default configuration values.
const (
	DefaultStateFile = ".modguard/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Config file names, in lookup order.
var configFileNames = []string{"modguard.yaml", "modguard.yml"}

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is resolved by the loader, never read from the file.
	ProjectRoot string `koanf:"-"`

	SourceDirs       []string     `koanf:"source_dirs"`
	Include          []string     `koanf:"include"`
	Exclude          []string     `koanf:"exclude"`
	StatePath        string       `koanf:"state_path"`
	Workers          int          `koanf:"workers"`
	MaxFileSize      int64        `koanf:"max_file_size"`
	ClosureCacheSize int          `koanf:"closure_cache_size"`
	Verbose          bool         `koanf:"verbose"`
	OutputFormat     string       `koanf:"output"`
	Lint             *LintConfig  `koanf:"lint"`
	Constraints      []Constraint `koanf:"constraints"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		SourceDirs:   append([]string(nil), engine.DefaultSourceDirs...),
		Include:      append([]string(nil), engine.DefaultInclude...),
		Exclude:      append([]string(nil), engine.DefaultExclude...),
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
	}
}

// GetLintConfig returns the lint section, empty when unset.
func (c *Config) GetLintConfig() LintConfig {
	if c.Lint == nil {
		return LintConfig{}
	}
	return *c.Lint
}
