package modgraph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphOf builds a graph from an adjacency map, one record per key.
func graphOf(adj map[string][]string) *Graph {
	records := make([]DependencyRecord, 0, len(adj))
	for owner, deps := range adj {
		set := make(Set)
		for _, d := range deps {
			set.Add(ModuleID(d))
		}
		records = append(records, DependencyRecord{Owner: ModuleID(owner), Dependencies: set})
	}
	return Build(records)
}

func ids(names ...string) []ModuleID {
	out := make([]ModuleID, len(names))
	for i, n := range names {
		out[i] = ModuleID(n)
	}
	return out
}

func TestModuleID(t *testing.T) {
	id := NewModuleID("MyApp", "Web", "Router")
	assert.Equal(t, ModuleID("MyApp.Web.Router"), id)
	assert.Equal(t, []string{"MyApp", "Web", "Router"}, id.Segments())
	assert.Equal(t, id, ParseModuleID(" MyApp..Web.Router. "))
	assert.True(t, ModuleID("").IsZero())
	assert.Nil(t, ModuleID("").Segments())
	assert.Equal(t, "MyApp.Web.Router", id.String())
}

func TestSet_JSON(t *testing.T) {
	s := NewSet("B", "A")
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["A","B"]`, string(data))

	var decoded Set
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)

	empty, err := json.Marshal(Set(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestBuild_SkipsRecordsWithoutOwner(t *testing.T) {
	g := Build([]DependencyRecord{
		{Dependencies: NewSet("X")},
		{Owner: "A", Dependencies: NewSet("B")},
	})

	assert.Equal(t, 1, g.Len())
	assert.Equal(t, ids("A"), g.Modules())
}

func TestBuild_DuplicateOwnerLastWins(t *testing.T) {
	g := Build([]DependencyRecord{
		{Owner: "M", Dependencies: NewSet("Y", "Z"), FilePath: "first.ex"},
		{Owner: "M", Dependencies: NewSet("X"), FilePath: "second.ex"},
	})

	require.Equal(t, 1, g.Len())
	rec, ok := g.Record("M")
	require.True(t, ok)
	assert.Equal(t, NewSet("X"), rec.Dependencies)
	assert.Equal(t, "second.ex", rec.FilePath)
}

func TestBuild_Normalizes(t *testing.T) {
	deps := NewSet("A", "B")
	g := Build([]DependencyRecord{
		{Owner: "A", Dependencies: deps, Activations: NewSet("C", "A")},
	})

	assert.Equal(t, NewSet("B", "C"), g.DirectDependencies("A"), "owner removed, activation folded in")
	assert.Equal(t, NewSet("C"), g.Activations("A"))

	// The graph must not alias caller data.
	deps.Add("Z")
	assert.False(t, g.DirectDependencies("A").Has("Z"))

	// Accessors return copies.
	got := g.DirectDependencies("A")
	got.Add("Q")
	assert.False(t, g.DirectDependencies("A").Has("Q"))
}

func TestGraph_Accessors(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B", "Ext.Lib"},
		"B": {"C"},
		"C": {},
	})

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 3, g.EdgeCount())
	assert.True(t, g.Contains("A"))
	assert.False(t, g.Contains("Ext.Lib"))
	assert.True(t, g.IsExternal("Ext.Lib"))
	assert.False(t, g.IsExternal("A"))
	assert.False(t, g.IsExternal("Unknown"))
	assert.Equal(t, ids("Ext.Lib"), g.ExternalModules())
	assert.Equal(t, ids("A"), g.Dependents("B"))
	assert.Empty(t, g.DirectDependencies("Ext.Lib"))
	assert.Empty(t, g.Activations("Unknown"))

	_, ok := g.Record("Ext.Lib")
	assert.False(t, ok)
}

func TestGraph_Cycles(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		g := graphOf(map[string][]string{"A": {"B"}, "B": {"C"}, "C": {}})
		hasCycle, path := g.HasCycle()
		assert.False(t, hasCycle)
		assert.Nil(t, path)
	})

	t.Run("two cycles", func(t *testing.T) {
		g := graphOf(map[string][]string{
			"A": {"B"},
			"B": {"C", "Ext"},
			"C": {"A"},
			"X": {"Y"},
			"Y": {"X"},
			"Z": {"A"},
		})

		cycles := g.Cycles()
		require.Len(t, cycles, 2)
		assert.Equal(t, ids("A", "B", "C", "A"), cycles[0])
		assert.Equal(t, ids("X", "Y", "X"), cycles[1])

		hasCycle, path := g.HasCycle()
		assert.True(t, hasCycle)
		assert.Equal(t, cycles[0], path)
	})
}
