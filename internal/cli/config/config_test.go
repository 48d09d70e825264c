package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "modguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "verbose: false\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, []string{"lib"}, cfg.SourceDirs)
	assert.Equal(t, []string{"**/*.ex", "**/*.exs"}, cfg.Include)
	assert.Equal(t, []string{"deps/**", "_build/**"}, cfg.Exclude)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Zero(t, cfg.Workers)
	assert.Empty(t, cfg.Constraints)
	assert.Equal(t, LintConfig{}, cfg.GetLintConfig())

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `source_dirs: [lib, apps]
exclude: ["lib/generated/**"]
state_path: ":memory:"
workers: 4
output: json
lint:
  disabled: [AG04]
  severity:
    AG02: warning
constraints:
  - name: web-not-repo
    rule: AG02
    modules: ["MyApp.Web.**"]
    forbidden: ["MyApp.Repo", "Ecto.**"]
    except: ["MyApp.Web.Health"]
    severity: info
  - rule: AG03
    modules: ["MyApp.Accounts.**"]
    forbidden: ["Phoenix.**"]
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"lib", "apps"}, cfg.SourceDirs)
	assert.Equal(t, []string{"lib/generated/**"}, cfg.Exclude)
	assert.Equal(t, ":memory:", cfg.StatePath)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "json", cfg.OutputFormat)

	require.NotNil(t, cfg.Lint)
	assert.Equal(t, []string{"AG04"}, cfg.Lint.Disabled)
	assert.Equal(t, map[string]string{"AG02": "warning"}, cfg.Lint.Severity)

	require.Len(t, cfg.Constraints, 2)
	assert.Equal(t, Constraint{
		Name:      "web-not-repo",
		Rule:      "AG02",
		Modules:   []string{"MyApp.Web.**"},
		Forbidden: []string{"MyApp.Repo", "Ecto.**"},
		Except:    []string{"MyApp.Web.Health"},
		Severity:  "info",
	}, cfg.Constraints[0])
	assert.Equal(t, "AG03", cfg.Constraints[1].DisplayName())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "state_path: from_file.db\nworkers: 2\n")

	t.Setenv("MODGUARD_STATE_PATH", "from_env.db")
	t.Setenv("MODGUARD_WORKERS", "8")
	t.Setenv("MODGUARD_SOURCE_DIRS", "lib, apps")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "from_env.db"), cfg.StatePath)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"lib", "apps"}, cfg.SourceDirs)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "state_path: from_file.db\noutput: markdown\n")
	t.Setenv("MODGUARD_STATE_PATH", "from_env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "state database")
	flags.StringP("output", "o", "", "output format")
	flags.StringSlice("source-dirs", nil, "source directories")
	flags.BoolP("verbose", "v", false, "verbose")
	require.NoError(t, flags.Set("state", "from_flag.db"))
	require.NoError(t, flags.Set("source-dirs", "src,apps"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	wantState, err := filepath.Abs("from_flag.db")
	require.NoError(t, err)
	assert.Equal(t, wantState, cfg.StatePath, "--state resolves against the working directory")
	assert.Equal(t, []string{"src", "apps"}, cfg.SourceDirs)
	assert.Equal(t, "markdown", cfg.OutputFormat, "unset flags do not override the file")
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_ProjectDirFlag(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "workers: 3\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-dir", "", "project root")
	require.NoError(t, flags.Set("project-dir", dir))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestLoadConfig_InvalidConstraint(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `constraints:
  - rule: AG99
    modules: ["A"]
    forbidden: ["B"]
`)

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), `unknown rule "AG99"`)
	assert.Nil(t, GetCurrentConfig())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Constraints = []Constraint{{
			Rule:      "AG01",
			Modules:   []string{"MyApp.Web.**"},
			Forbidden: []string{"MyApp.Repo"},
		}}
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"no source dirs", func(c *Config) { c.SourceDirs = nil }, "source_dirs must not be empty"},
		{"no include", func(c *Config) { c.Include = nil }, "include must not be empty"},
		{"bad glob", func(c *Config) { c.Exclude = []string{"deps/["} }, `invalid glob pattern "deps/["`},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers must be >= 0"},
		{"bad output", func(c *Config) { c.OutputFormat = "xml" }, `unknown output format "xml"`},
		{"bad lint severity", func(c *Config) {
			c.Lint = &LintConfig{Severity: map[string]string{"AG01": "fatal"}}
		}, `lint.severity.AG01: invalid severity "fatal"`},
		{"missing rule", func(c *Config) { c.Constraints[0].Rule = "" }, "rule is required"},
		{"graph rule", func(c *Config) { c.Constraints[0].Rule = "AG04" }, "does not take constraints"},
		{"no modules", func(c *Config) { c.Constraints[0].Modules = nil }, "modules must not be empty"},
		{"no forbidden", func(c *Config) { c.Constraints[0].Forbidden = nil }, "forbidden must not be empty"},
		{"bad pattern", func(c *Config) { c.Constraints[0].Forbidden = []string{"MyApp.["} }, "invalid module pattern"},
		{"bad constraint severity", func(c *Config) { c.Constraints[0].Severity = "loud" }, `invalid severity "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}

	t.Run("errors are joined", func(t *testing.T) {
		cfg := valid()
		cfg.Workers = -1
		cfg.OutputFormat = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workers")
		assert.Contains(t, err.Error(), "output format")
	})
}

func TestGetLogger(t *testing.T) {
	fallback := GetLogger(context.Background())
	require.NotNil(t, fallback)

	logger := NewLogger(os.Stderr, true)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, loggerKey{}, LoggerKey())
}
