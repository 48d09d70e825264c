package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modguard/internal/cli/config"
	clitest "github.com/leapstack-labs/modguard/internal/cli/testutil"
)

const memoryState = "state_path: \":memory:\"\n"

// webNotRepoConstraints forbids the web layer from reaching the repo at all.
const webNotRepoConstraints = `constraints:
  - name: web-not-repo
    rule: AG02
    modules: ["MyApp.Web.**"]
    forbidden: ["MyApp.Repo"]
  - name: no-ecto-in-web
    rule: AG03
    modules: ["MyApp.Web.**"]
    forbidden: ["Ecto.**"]
`

const webNotRepo = memoryState + webNotRepoConstraints

// setupProject writes the Phoenix fixture plus modguard.yaml and loads the config.
func setupProject(t *testing.T, yamlContent string) string {
	t.Helper()
	dir := clitest.SetupTestProject(t, yamlContent)

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig(clitest.ConfigPath(dir), nil)
	require.NoError(t, err)
	return dir
}

// execute runs cmd with args and returns stdout. Usage and error printing are
// silenced as on the root command, so stdout holds only the command's output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewCheckCommand(), "check [path]", []string{"format", "disable", "severity", "rule", "full-refresh", "watch"}},
		{NewGraphCommand(), "graph", []string{"format"}},
		{NewRulesCommand(), "rules [rule-id]", []string{"group", "type", "verbose", "format"}},
		{NewRunsCommand(), "runs", []string{"limit", "format"}},
		{NewInitCommand(), "init [directory]", []string{"force"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				f := tt.cmd.Flags().Lookup(flag)
				if f == nil {
					f = tt.cmd.PersistentFlags().Lookup(flag)
				}
				assert.NotNil(t, f, "flag %q should exist", flag)
			}
		})
	}
}

func TestGraphSubcommands(t *testing.T) {
	cmd := NewGraphCommand()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"deps", "closure", "path", "cycles", "export"}, names)
}
