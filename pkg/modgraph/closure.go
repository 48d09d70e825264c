package modgraph

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TransitiveClosure returns every module reachable from start by following zero
// or more dependency edges, including start itself.
//
// Modules missing from the graph are included as terminal leaves. Cycles are
// handled by never re-expanding a visited node.
func (g *Graph) TransitiveClosure(start ModuleID) Set {
	visited := make(Set)

	var visit func(id ModuleID)
	visit = func(id ModuleID) {
		if visited.Has(id) {
			return
		}
		visited[id] = struct{}{}

		rec, ok := g.records[id]
		if !ok {
			return // external leaf
		}
		for dep := range rec.Dependencies {
			visit(dep)
		}
	}

	visit(start)
	return visited
}

// DefaultClosureCacheSize bounds the number of closures a ClosureCache keeps.
const DefaultClosureCacheSize = 4096

// ClosureCache memoizes TransitiveClosure results for one graph.
// Create one per analysis run; it is safe for concurrent use.
type ClosureCache struct {
	graph *Graph
	cache *lru.Cache[ModuleID, Set]

	mu     sync.Mutex
	hits   int
	misses int
}

// NewClosureCache creates a cache over g holding at most size closures.
// A non-positive size uses DefaultClosureCacheSize.
func NewClosureCache(g *Graph, size int) *ClosureCache {
	if size <= 0 {
		size = DefaultClosureCacheSize
	}
	// lru.New only fails for non-positive sizes.
	c, _ := lru.New[ModuleID, Set](size)
	return &ClosureCache{graph: g, cache: c}
}

// Graph returns the graph the cache is bound to.
func (c *ClosureCache) Graph() *Graph {
	return c.graph
}

// Closure returns the transitive closure of start. Callers must not mutate the result.
func (c *ClosureCache) Closure(start ModuleID) Set {
	if set, ok := c.cache.Get(start); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return set
	}

	set := c.graph.TransitiveClosure(start)
	c.cache.Add(start, set)

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return set
}

// Stats returns cache hit and miss counts.
func (c *ClosureCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
