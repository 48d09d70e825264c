package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitest "github.com/leapstack-labs/modguard/internal/cli/testutil"
	"github.com/leapstack-labs/modguard/pkg/core"
)

func TestRulesCommand_ListAll(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), "--format", "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# Architecture Rules")
	assert.Contains(t, out, "## Constraint Rules")
	assert.Contains(t, out, "## Graph Rules")
	for _, id := range []string{"AG01", "AG02", "AG03", "AG04"} {
		assert.Contains(t, out, "**"+id+"**")
	}
}

func TestRulesCommand_Text(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Architecture Rules (4)")
	assert.Contains(t, out, "forbidden-transitive-dependency")
	assert.Contains(t, out, "modguard rules <rule-id>")
}

func TestRulesCommand_FilterByType(t *testing.T) {
	t.Run("graph rules", func(t *testing.T) {
		out, err := execute(t, NewRulesCommand(), "--type", "graph", "--format", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "Graph Rules")
		assert.Contains(t, out, "AG04")
		assert.NotContains(t, out, "Constraint Rules")
	})

	t.Run("constraint rules", func(t *testing.T) {
		out, err := execute(t, NewRulesCommand(), "--type", "constraint", "--format", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "Constraint Rules")
		assert.NotContains(t, out, "AG04")
	})

	t.Run("unknown group", func(t *testing.T) {
		out, err := execute(t, NewRulesCommand(), "--group", "naming", "--format", "json")
		require.NoError(t, err)

		var got RulesJSONOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Empty(t, got.Rules)
		assert.Zero(t, got.Count.Total)
	})
}

func TestRulesCommand_ShowSpecificRule(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), "ag02", "--format", "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# AG02 - forbidden-transitive-dependency")
	assert.Contains(t, out, "**Type:** constraint")
	assert.Contains(t, out, "```elixir")
	clitest.AssertValidMarkdown(t, out)
}

func TestRulesCommand_ShowUnknownRule(t *testing.T) {
	_, err := execute(t, NewRulesCommand(), "AG99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "AG99" not found`)
}

func TestRulesCommand_JSON(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), "--format", "json")
	require.NoError(t, err)

	var got RulesJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Count.Constraint)
	assert.Equal(t, 1, got.Count.Graph)
	assert.Equal(t, 4, got.Count.Total)

	byID := make(map[string]core.RuleInfo, len(got.Rules))
	for _, r := range got.Rules {
		byID[r.ID] = r
	}
	require.Contains(t, byID, "AG04")
	assert.Equal(t, core.RuleTypeGraph, byID["AG04"].Type)
	assert.Equal(t, core.SeverityError, byID["AG01"].DefaultSeverity)
	assert.NotEmpty(t, byID["AG02"].Rationale)
}

func TestFilterRulesByOptions(t *testing.T) {
	rules := []core.RuleInfo{
		{ID: "AG01", Group: "architecture", Type: core.RuleTypeConstraint},
		{ID: "AG04", Group: "architecture", Type: core.RuleTypeGraph},
		{ID: "X01", Group: "other", Type: core.RuleTypeConstraint},
	}

	assert.Len(t, filterRulesByOptions(rules, &RulesOptions{}), 3)
	assert.Len(t, filterRulesByOptions(rules, &RulesOptions{Group: "architecture"}), 2)
	assert.Len(t, filterRulesByOptions(rules, &RulesOptions{Group: "architecture", Type: core.RuleTypeGraph}), 1)
}

func TestTruncateOneLine(t *testing.T) {
	assert.Equal(t, "short", truncateOneLine("short", 10))
	assert.Equal(t, "first line second", truncateOneLine("first line\nsecond", 80))
	assert.Len(t, truncateOneLine("abcdefghijklmnopqrstuvwxyz", 10), 10)
}
