package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modguard/internal/cli/commands"
	"github.com/leapstack-labs/modguard/internal/cli/config"
)

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"Option", "Description"}, [][]string{{"--output", "auto|text"}})

	assert.Equal(t, "| Option | Description |\n| --- | --- |\n| --output | auto\\|text |\n\n", string(w.Bytes()))
}

func TestGenerateRuleDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRuleDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[AG01](/rules/architecture#AG01)")
	assert.Contains(t, string(index), "DO NOT EDIT")

	page, err := os.ReadFile(filepath.Join(dir, "architecture.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "### AG04 - dependency-cycle {#AG04}")
	assert.Contains(t, string(page), "```elixir")
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	for _, name := range []string{"index.md", "check.md", "graph.md", "rules.md", "runs.md", "init.md", "version.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, "help.md"))

	check, err := os.ReadFile(filepath.Join(dir, "check.md"))
	require.NoError(t, err)
	assert.Contains(t, string(check), "modguard check [path] [options]")
	assert.Contains(t, string(check), "`--full-refresh`")
	assert.Contains(t, string(check), "`-f, --format`")
	assert.Contains(t, string(check), "modguard check --severity error")
}

func TestGenerateCLIDocs_GraphSubcommands(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	graph, err := os.ReadFile(filepath.Join(dir, "graph.md"))
	require.NoError(t, err)
	page := string(graph)
	for _, sub := range []string{"deps", "closure", "path", "cycles", "export"} {
		assert.Contains(t, page, "### "+sub+" {#"+sub+"}")
	}
	assert.Contains(t, page, "modguard graph path <from> <to>")
	assert.Contains(t, page, "`--external`")

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[`graph path`](/cli/graph#path)")
}

func TestGenerateCLIDocs_ConfigurationAndExitCodes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	data, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	index := string(data)

	for _, s := range config.Settings() {
		assert.Contains(t, index, "`"+s.Key+"`")
	}
	assert.Contains(t, index, "| `state_path` | `MODGUARD_STATE_PATH` | `.modguard/state.db` |")
	assert.Contains(t, index, "| `constraints` | file only | - |")
	assert.Contains(t, index, commands.ErrViolations.Error())
}

func TestUsageLine(t *testing.T) {
	root := &cobra.Command{Use: "modguard"}
	parent := &cobra.Command{Use: "graph"}
	leaf := &cobra.Command{Use: "path <from> <to>", Run: func(*cobra.Command, []string) {}}
	parent.AddCommand(leaf)
	root.AddCommand(parent)

	assert.Equal(t, "modguard graph path <from> <to>", usageLine(leaf))
	assert.Equal(t, "modguard graph <subcommand>", usageLine(parent))
}

func TestFormatDefault(t *testing.T) {
	assert.Equal(t, "-", formatDefault(nil))
	assert.Equal(t, "`lib,src`", formatDefault([]string{"lib", "src"}))
	assert.Equal(t, "`0`", formatDefault(0))
}

func TestCleanExample(t *testing.T) {
	assert.Equal(t, "# a\nmodguard check", cleanExample("  # a\n  modguard check"))
	assert.Equal(t, "# a\n\n  nested", cleanExample("\n  # a\n\n    nested\n"))
}
