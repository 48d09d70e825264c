package lint

import (
	"log/slog"

	"github.com/leapstack-labs/modguard/pkg/core"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// Context gives rules read access to one analysis run.
// The graph is shared read-only; closures are memoised per subject.
type Context struct {
	graph    *modgraph.Graph
	closures *modgraph.ClosureCache
	logger   *slog.Logger
}

// ContextOptions configures NewContext.
type ContextOptions struct {
	// ClosureCacheSize bounds memoised closures (modgraph default when zero)
	ClosureCacheSize int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// NewContext creates a run-scoped context over g.
func NewContext(g *modgraph.Graph, opts ContextOptions) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Context{
		graph:    g,
		closures: modgraph.NewClosureCache(g, opts.ClosureCacheSize),
		logger:   logger,
	}
}

// Graph returns the module graph.
func (c *Context) Graph() *modgraph.Graph {
	return c.graph
}

// Logger returns the run logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Closure returns the memoised transitive closure of id, including id.
func (c *Context) Closure(id modgraph.ModuleID) modgraph.Set {
	return c.closures.Closure(id)
}

// CacheStats reports closure cache hits and misses.
func (c *Context) CacheStats() (hits, misses int) {
	return c.closures.Stats()
}

// FilePath returns the file declaring id, or "" for external modules.
func (c *Context) FilePath(id modgraph.ModuleID) string {
	if rec, ok := c.graph.Record(id); ok {
		return rec.FilePath
	}
	return ""
}

// Selection is a constraint's compiled patterns.
type Selection struct {
	Modules   PatternSet
	Forbidden PatternSet
	Except    PatternSet
}

// Compile parses every pattern in a constraint.
func Compile(c core.Constraint) (*Selection, error) {
	modules, err := ParsePatterns(c.Modules)
	if err != nil {
		return nil, err
	}
	forbidden, err := ParsePatterns(c.Forbidden)
	if err != nil {
		return nil, err
	}
	except, err := ParsePatterns(c.Except)
	if err != nil {
		return nil, err
	}
	return &Selection{Modules: modules, Forbidden: forbidden, Except: except}, nil
}

// Subjects returns declared modules matched by the selection, sorted.
// External modules are never subjects since nothing is known about their references.
func (c *Context) Subjects(sel *Selection) []modgraph.ModuleID {
	var out []modgraph.ModuleID
	for _, id := range c.graph.Modules() {
		if sel.Modules.Match(id) && !sel.Except.Match(id) {
			out = append(out, id)
		}
	}
	return out
}

// IsForbidden reports whether target is forbidden for subject.
// A module is never forbidden for itself.
func (sel *Selection) IsForbidden(subject, target modgraph.ModuleID) bool {
	return subject != target && sel.Forbidden.Match(target)
}
