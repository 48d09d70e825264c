package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modguard/internal/cli/config"
	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/lint"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

type checkJSON struct {
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	Summary     CheckSummary      `json:"summary"`
}

func TestCheck_ReportsTransitiveViolation(t *testing.T) {
	setupProject(t, webNotRepo)

	out, err := execute(t, NewCheckCommand(), "--format", "json")
	require.ErrorIs(t, err, ErrViolations)
	assert.NotContains(t, out, "Usage:")

	var got checkJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.Diagnostics, 1)
	d := got.Diagnostics[0]
	assert.Equal(t, "AG02", d.RuleID)
	assert.Equal(t, core.SeverityError, d.Severity)
	assert.Equal(t, modgraph.ModuleID("MyApp.Web.UserController"), d.Module)
	assert.Equal(t, modgraph.ModuleID("MyApp.Repo"), d.Target)
	assert.Equal(t, "lib/my_app/web/user_controller.ex", d.FilePath)
	assert.Equal(t, "web-not-repo", d.Constraint)
	assert.Equal(t, []modgraph.ModuleID{
		"MyApp.Web.UserController", "MyApp.Accounts", "MyApp.Repo",
	}, d.Path)

	assert.Equal(t, 5, got.Summary.Files)
	assert.Equal(t, 5, got.Summary.Modules)
	assert.Equal(t, 2, got.Summary.Constraints)
	assert.Equal(t, 1, got.Summary.Violations)
	assert.Equal(t, 1, got.Summary.Errors)
	assert.NotEmpty(t, got.Summary.RunID)
}

func TestCheck_Clean(t *testing.T) {
	setupProject(t, `state_path: ":memory:"
constraints:
  - rule: AG01
    modules: ["MyApp.Web.**"]
    forbidden: ["MyApp.Repo"]
`)

	out, err := execute(t, NewCheckCommand(), "--format", "markdown")
	require.NoError(t, err, "only a transitive path exists, AG01 is direct-only")

	assert.Contains(t, out, "# Architecture Check")
	assert.Contains(t, out, "No architecture violations.")
}

func TestCheck_Filters(t *testing.T) {
	t.Run("disabled rule", func(t *testing.T) {
		setupProject(t, webNotRepo)
		_, err := execute(t, NewCheckCommand(), "--format", "json", "--disable", "AG02")
		assert.NoError(t, err)
	})

	t.Run("only other rule", func(t *testing.T) {
		setupProject(t, webNotRepo)
		_, err := execute(t, NewCheckCommand(), "--format", "json", "--rule", "AG03")
		assert.NoError(t, err)
	})

	t.Run("path outside violations", func(t *testing.T) {
		setupProject(t, webNotRepo)
		_, err := execute(t, NewCheckCommand(), "--format", "json", "lib/my_app/accounts")
		assert.NoError(t, err)
	})

	t.Run("severity threshold", func(t *testing.T) {
		setupProject(t, `state_path: ":memory:"
constraints:
  - rule: AG02
    modules: ["MyApp.Web.**"]
    forbidden: ["MyApp.Repo"]
    severity: info
`)
		_, err := execute(t, NewCheckCommand(), "--format", "json", "--severity", "warning")
		assert.NoError(t, err)

		_, err = execute(t, NewCheckCommand(), "--format", "json", "--severity", "info")
		assert.ErrorIs(t, err, ErrViolations)
	})

	t.Run("invalid severity flag", func(t *testing.T) {
		setupProject(t, webNotRepo)
		_, err := execute(t, NewCheckCommand(), "--severity", "loud")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --severity")
	})
}

func TestCheck_TextOutput(t *testing.T) {
	setupProject(t, webNotRepo)

	out, err := execute(t, NewCheckCommand(), "--format", "text")
	require.ErrorIs(t, err, ErrViolations)

	assert.Contains(t, out, "lib/my_app/web/user_controller.ex")
	assert.Contains(t, out, "AG02")
	assert.Contains(t, out, "MyApp.Web.UserController → MyApp.Accounts → MyApp.Repo")
	assert.Contains(t, out, "constraint: web-not-repo")
	assert.Contains(t, out, "1 violation(s): 1 error")
}

func TestBuildLintConfig(t *testing.T) {
	t.Run("empty options", func(t *testing.T) {
		cfg, err := buildLintConfig(nil, &CheckOptions{})
		require.NoError(t, err)
		assert.False(t, cfg.IsDisabled("AG01"))
	})

	t.Run("project config then flags", func(t *testing.T) {
		projectCfg := &config.Config{
			Lint: &config.LintConfig{
				Disabled: []string{"AG04"},
				Severity: map[string]string{"AG02": "warning"},
			},
		}
		cfg, err := buildLintConfig(projectCfg, &CheckOptions{Disable: []string{" AG03 "}})
		require.NoError(t, err)

		assert.True(t, cfg.IsDisabled("AG04"))
		assert.True(t, cfg.IsDisabled("AG03"))
		assert.False(t, cfg.IsDisabled("AG01"))
		assert.Equal(t, core.SeverityWarning, cfg.GetSeverity("AG02", core.SeverityError))
	})

	t.Run("only rules", func(t *testing.T) {
		cfg, err := buildLintConfig(nil, &CheckOptions{Rules: []string{"AG01"}})
		require.NoError(t, err)
		assert.False(t, cfg.IsDisabled("AG01"))
		assert.True(t, cfg.IsDisabled("AG02"))
	})

	t.Run("invalid project severity", func(t *testing.T) {
		projectCfg := &config.Config{Lint: &config.LintConfig{Severity: map[string]string{"AG02": "loud"}}}
		_, err := buildLintConfig(projectCfg, &CheckOptions{})
		assert.Error(t, err)
	})
}

func TestFilterByPath(t *testing.T) {
	diags := []lint.Diagnostic{
		{RuleID: "AG01", FilePath: "lib/my_app/web/a.ex"},
		{RuleID: "AG01", FilePath: "lib/my_app/web_helpers.ex"},
		{RuleID: "AG01", FilePath: "lib/my_app/repo.ex"},
	}

	assert.Len(t, filterByPath(diags, "/proj", ""), 3)
	assert.Len(t, filterByPath(diags, "/proj", "."), 3)

	got := filterByPath(diags, "/proj", "lib/my_app/web")
	require.Len(t, got, 1)
	assert.Equal(t, "lib/my_app/web/a.ex", got[0].FilePath)

	got = filterByPath(diags, "/proj", "/proj/lib/my_app/repo.ex")
	require.Len(t, got, 1)
	assert.Equal(t, "lib/my_app/repo.ex", got[0].FilePath)
}

func TestFilterBySeverity(t *testing.T) {
	diags := []lint.Diagnostic{
		{RuleID: "A", Severity: core.SeverityError},
		{RuleID: "B", Severity: core.SeverityWarning},
		{RuleID: "C", Severity: core.SeverityHint},
	}

	assert.Len(t, filterBySeverity(diags, "error"), 1)
	assert.Len(t, filterBySeverity(diags, "warning"), 2)
	assert.Len(t, filterBySeverity(diags, "hint"), 3)
	assert.Len(t, filterBySeverity(diags, "bogus"), 3)
}
