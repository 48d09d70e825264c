package config

import (
	"strings"

	"github.com/leapstack-labs/modguard/internal/engine"
)

// Setting describes one top-level key of modguard.yaml.
type Setting struct {
	Key         string      // koanf key, e.g. "state_path"
	Default     interface{} // loaded before the config file; nil means the zero value
	Description string
	FileOnly    bool // structured values that cannot come from a single env var
}

// EnvVar returns the environment variable that sets the key.
func (s Setting) EnvVar() string {
	return EnvPrefix + strings.ToUpper(s.Key)
}

// Settings lists every key the loader reads, in documentation order.
func Settings() []Setting {
	return []Setting{
		{Key: "source_dirs", Default: engine.DefaultSourceDirs, Description: "Comma-separated source directories, relative to the project root"},
		{Key: "include", Default: engine.DefaultInclude, Description: "File globs to extract"},
		{Key: "exclude", Default: engine.DefaultExclude, Description: "File globs to skip"},
		{Key: "state_path", Default: DefaultStateFile, Description: "State database path (:memory: disables the cache)"},
		{Key: "workers", Default: 0, Description: "Parallel extraction workers (0 = number of CPUs)"},
		{Key: "max_file_size", Description: "Skip source files larger than this many bytes (0 = engine default)"},
		{Key: "closure_cache_size", Description: "Transitive closures kept in memory per check (0 = default)"},
		{Key: "verbose", Default: false, Description: "Verbose logging"},
		{Key: "output", Default: DefaultOutput, Description: "Output format: auto, text, markdown, json"},
		{Key: "lint", Description: "Disabled rules and severity overrides", FileOnly: true},
		{Key: "constraints", Description: "Architecture constraints evaluated by check", FileOnly: true},
	}
}

// defaults returns the confmap loaded as the lowest layer.
func defaults() map[string]interface{} {
	out := make(map[string]interface{})
	for _, s := range Settings() {
		if s.Default != nil {
			out[s.Key] = s.Default
		}
	}
	return out
}
