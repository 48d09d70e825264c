package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modguard/internal/cli/output"
	"github.com/leapstack-labs/modguard/internal/engine"
	"github.com/leapstack-labs/modguard/pkg/lint"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// GraphOptions holds options shared by the graph subcommands.
type GraphOptions struct {
	Format          string
	IncludeExternal bool
}

// NewGraphCommand creates the graph command and its subcommands.
func NewGraphCommand() *cobra.Command {
	opts := &GraphOptions{}
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Query the module dependency graph",
		Long: `Inspect the module dependency graph built from the project sources.

Modules declared in the project are nodes with outgoing edges; modules that
are only referenced (Ecto.Repo, Phoenix.Controller, ...) are external leaves.`,
		Example: `  # Direct dependencies, activations and dependents of a module
  modguard graph deps MyApp.Web.UserController

  # Everything a module can reach
  modguard graph closure MyApp.Web.UserController

  # Why does the controller reach the repo?
  modguard graph path MyApp.Web.UserController MyApp.Repo

  # Dependency cycles
  modguard graph cycles

  # Graphviz export
  modguard graph export --format dot | dot -Tsvg > graph.svg`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json (export: dot, json)")

	cmd.AddCommand(newGraphDepsCommand(opts))
	cmd.AddCommand(newGraphClosureCommand(opts))
	cmd.AddCommand(newGraphPathCommand(opts))
	cmd.AddCommand(newGraphCyclesCommand(opts))
	cmd.AddCommand(newGraphExportCommand(opts))

	return cmd
}

// loadGraph discovers the project and returns its graph.
func loadGraph(ctx context.Context, cmdCtx *CommandContext) (*modgraph.Graph, error) {
	if _, err := cmdCtx.Engine.Discover(ctx, engine.DiscoveryOptions{}); err != nil {
		return nil, fmt.Errorf("failed to discover modules: %w", err)
	}
	return cmdCtx.Engine.Graph(), nil
}

// withGraph runs fn with a discovered graph and a renderer honoring --format.
func withGraph(cmd *cobra.Command, opts *GraphOptions, fn func(*CommandContext, *modgraph.Graph) error) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	cmdCtx.WithFormat(cmd, opts.Format)

	g, err := loadGraph(cmd.Context(), cmdCtx)
	if err != nil {
		return err
	}
	return fn(cmdCtx, g)
}

func requireKnown(g *modgraph.Graph, id modgraph.ModuleID) error {
	if g.Contains(id) || g.IsExternal(id) {
		return nil
	}
	return fmt.Errorf("module %q not found in the graph", id)
}

// moduleDeps is the JSON shape of graph deps.
type moduleDeps struct {
	Module       modgraph.ModuleID   `json:"module"`
	File         string              `json:"file,omitempty"`
	External     bool                `json:"external"`
	Dependencies []modgraph.ModuleID `json:"dependencies"`
	Activations  []modgraph.ModuleID `json:"activations"`
	Dependents   []modgraph.ModuleID `json:"dependents"`
}

func newGraphDepsCommand(opts *GraphOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deps <module>",
		Short: "Show direct dependencies, activations and dependents of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(cmd, opts, func(cmdCtx *CommandContext, g *modgraph.Graph) error {
				id := modgraph.ParseModuleID(args[0])
				if err := requireKnown(g, id); err != nil {
					return err
				}

				deps := moduleDeps{
					Module:       id,
					External:     g.IsExternal(id),
					Dependencies: nonNil(g.DirectDependencies(id).Sorted()),
					Activations:  nonNil(g.Activations(id).Sorted()),
					Dependents:   nonNil(g.Dependents(id)),
				}
				if rec, ok := g.Record(id); ok {
					deps.File = rec.FilePath
				}
				return renderModuleDeps(cmdCtx.Renderer, deps)
			})
		},
	}
}

func renderModuleDeps(r *output.Renderer, d moduleDeps) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(d)
	}

	r.Header(1, string(d.Module))
	if d.File != "" {
		r.Muted(d.File)
	}
	if d.External {
		r.Muted("external module (referenced, not declared)")
	}
	sections := []struct {
		title string
		ids   []modgraph.ModuleID
	}{
		{"Dependencies", d.Dependencies},
		{"Activations (use)", d.Activations},
		{"Dependents", d.Dependents},
	}
	for _, s := range sections {
		r.Println("")
		r.Header(2, fmt.Sprintf("%s (%d)", s.title, len(s.ids)))
		for _, id := range s.ids {
			r.Println("- " + string(id))
		}
	}
	return nil
}

func newGraphClosureCommand(opts *GraphOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "closure <module>",
		Short: "Show every module reachable from a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(cmd, opts, func(cmdCtx *CommandContext, g *modgraph.Graph) error {
				id := modgraph.ParseModuleID(args[0])
				if err := requireKnown(g, id); err != nil {
					return err
				}

				closure := g.TransitiveClosure(id)
				closure.Remove(id)
				reachable := nonNil(closure.Sorted())

				r := cmdCtx.Renderer
				if r.EffectiveMode() == output.ModeJSON {
					return r.JSON(map[string]any{"module": id, "reachable": reachable})
				}

				rows := make([][]string, 0, len(reachable))
				for _, m := range reachable {
					kind, file := "external", ""
					if rec, ok := g.Record(m); ok {
						kind, file = "declared", rec.FilePath
					}
					rows = append(rows, []string{string(m), kind, file})
				}
				r.Header(1, fmt.Sprintf("%s reaches %d module(s)", id, len(reachable)))
				if len(rows) > 0 {
					r.Println("")
					r.Table([]string{"Module", "Kind", "File"}, rows)
				}
				return nil
			})
		},
	}
}

func newGraphPathCommand(opts *GraphOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Show a dependency path between two modules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(cmd, opts, func(cmdCtx *CommandContext, g *modgraph.Graph) error {
				from, to := modgraph.ParseModuleID(args[0]), modgraph.ParseModuleID(args[1])
				for _, id := range []modgraph.ModuleID{from, to} {
					if err := requireKnown(g, id); err != nil {
						return err
					}
				}

				path, ok := g.FindPath(from, to)
				r := cmdCtx.Renderer
				if r.EffectiveMode() == output.ModeJSON {
					return r.JSON(map[string]any{"from": from, "to": to, "found": ok, "path": nonNil(path)})
				}
				if !ok {
					r.Warning(fmt.Sprintf("%s does not depend on %s", from, to))
					return nil
				}
				r.Println(lint.FormatPath(path))
				return nil
			})
		},
	}
}

func newGraphCyclesCommand(opts *GraphOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List dependency cycles between declared modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGraph(cmd, opts, func(cmdCtx *CommandContext, g *modgraph.Graph) error {
				cycles := g.Cycles()
				r := cmdCtx.Renderer
				if r.EffectiveMode() == output.ModeJSON {
					if cycles == nil {
						cycles = [][]modgraph.ModuleID{}
					}
					return r.JSON(map[string]any{"cycles": cycles})
				}
				if len(cycles) == 0 {
					r.Success("No dependency cycles")
					return nil
				}
				r.Header(1, fmt.Sprintf("%d dependency cycle(s)", len(cycles)))
				for _, c := range cycles {
					r.Println("- " + lint.FormatPath(c))
				}
				return nil
			})
		},
	}
}

func nonNil(ids []modgraph.ModuleID) []modgraph.ModuleID {
	if ids == nil {
		return []modgraph.ModuleID{}
	}
	return ids
}
