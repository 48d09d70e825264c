package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// exportModule is one declared module in the JSON export.
type exportModule struct {
	ID           modgraph.ModuleID   `json:"id"`
	File         string              `json:"file"`
	Dependencies []modgraph.ModuleID `json:"dependencies"`
	Activations  []modgraph.ModuleID `json:"activations"`
}

// exportDocument is the JSON export of the whole graph.
type exportDocument struct {
	Modules  []exportModule      `json:"modules"`
	External []modgraph.ModuleID `json:"external"`
	Edges    int                 `json:"edges"`
}

func newGraphExportCommand(opts *GraphOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the module graph as Graphviz DOT or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := opts.Format
			if format == "" {
				format = "dot"
			}
			if format != "dot" && format != "json" {
				return fmt.Errorf("unsupported export format %q (dot|json)", format)
			}

			// The renderer mode does not apply to DOT.
			exportOpts := *opts
			exportOpts.Format = ""
			return withGraph(cmd, &exportOpts, func(cmdCtx *CommandContext, g *modgraph.Graph) error {
				if format == "json" {
					return cmdCtx.Renderer.JSON(exportJSON(g, opts.IncludeExternal))
				}
				return exportDOT(cmd.OutOrStdout(), g, opts.IncludeExternal)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.IncludeExternal, "external", true, "Include external modules as leaves")

	return cmd
}

func exportJSON(g *modgraph.Graph, includeExternal bool) exportDocument {
	doc := exportDocument{
		Modules:  make([]exportModule, 0, g.Len()),
		External: []modgraph.ModuleID{},
	}
	for _, id := range g.Modules() {
		rec, _ := g.Record(id)
		deps := g.DirectDependencies(id)
		if !includeExternal {
			deps = declaredOnly(g, deps)
		}
		doc.Modules = append(doc.Modules, exportModule{
			ID:           id,
			File:         rec.FilePath,
			Dependencies: nonNil(deps.Sorted()),
			Activations:  nonNil(g.Activations(id).Sorted()),
		})
		doc.Edges += deps.Len()
	}
	if includeExternal {
		doc.External = nonNil(g.ExternalModules())
	}
	return doc
}

func declaredOnly(g *modgraph.Graph, deps modgraph.Set) modgraph.Set {
	out := make(modgraph.Set, deps.Len())
	for d := range deps {
		if g.Contains(d) {
			out.Add(d)
		}
	}
	return out
}

// toDrawGraph converts the module graph to a dominikbraun graph for rendering.
// Activation edges are drawn bold; external leaves are dashed.
func toDrawGraph(g *modgraph.Graph, includeExternal bool) (graph.Graph[string, string], error) {
	dg := graph.New(graph.StringHash, graph.Directed())

	addVertex := func(id modgraph.ModuleID, attrs ...func(*graph.VertexProperties)) error {
		err := dg.AddVertex(string(id), attrs...)
		if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return fmt.Errorf("add vertex %s: %w", id, err)
		}
		return nil
	}

	for _, id := range g.Modules() {
		if err := addVertex(id, graph.VertexAttribute("shape", "box")); err != nil {
			return nil, err
		}
	}
	if includeExternal {
		for _, id := range g.ExternalModules() {
			if err := addVertex(id, graph.VertexAttribute("style", "dashed")); err != nil {
				return nil, err
			}
		}
	}

	for _, id := range g.Modules() {
		activations := g.Activations(id)
		for _, dep := range g.DirectDependencies(id).Sorted() {
			if !includeExternal && !g.Contains(dep) {
				continue
			}
			var edgeAttrs []func(*graph.EdgeProperties)
			if activations.Has(dep) {
				edgeAttrs = append(edgeAttrs, graph.EdgeAttribute("style", "bold"))
			}
			if err := dg.AddEdge(string(id), string(dep), edgeAttrs...); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("add edge %s -> %s: %w", id, dep, err)
			}
		}
	}

	return dg, nil
}

func exportDOT(w io.Writer, g *modgraph.Graph, includeExternal bool) error {
	dg, err := toDrawGraph(g, includeExternal)
	if err != nil {
		return err
	}
	return draw.DOT(dg, w, draw.GraphAttribute("rankdir", "LR"))
}
