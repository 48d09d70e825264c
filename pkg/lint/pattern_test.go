package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern string
		id      modgraph.ModuleID
		want    bool
	}{
		{"MyApp.Repo", "MyApp.Repo", true},
		{"MyApp.Repo", "MyApp.Repo.Migrations", false},
		{"MyApp.Web.*", "MyApp.Web.Router", true},
		{"MyApp.Web.*", "MyApp.Web.Live.Page", false},
		{"MyApp.Web.**", "MyApp.Web.Live.Page", true},
		{"MyApp.Web.**", "MyApp.WebHooks", false},
		{"Ecto.*Repo", "Ecto.Repo", true},
		{"Ecto.*Repo", "Ecto.Adapters.Repo", false},
		{"**", "Anything.At.All", true},
		{"MyApp.Repo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.id.String(), func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.id))
		})
	}
}

func TestParsePattern_Invalid(t *testing.T) {
	_, err := ParsePattern("  ")
	assert.Error(t, err)

	_, err = ParsePattern("MyApp.[Web")
	assert.Error(t, err)

	_, err = ParsePatterns([]string{"Ok.*", "Bad.[x"})
	assert.Error(t, err)
}

func TestPatternSet(t *testing.T) {
	set, err := ParsePatterns([]string{"MyApp.Repo", "Ecto.**"})
	require.NoError(t, err)
	assert.True(t, set.Match("Ecto.Changeset"))
	assert.True(t, set.Match("MyApp.Repo"))
	assert.False(t, set.Match("MyApp.Accounts"))
	assert.Equal(t, "Ecto.**", set[1].String())
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "A → B → C", FormatPath([]modgraph.ModuleID{"A", "B", "C"}))
	assert.Equal(t, "", FormatPath(nil))
	assert.Equal(t, "A → B", Diagnostic{Path: []modgraph.ModuleID{"A", "B"}}.PathString())
}
