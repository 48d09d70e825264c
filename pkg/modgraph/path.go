package modgraph

// FindPath returns a dependency path [start, ..., target] or false when target is
// not reachable from start.
//
// The path is a depth-first witness, not necessarily the shortest. Neighbors are
// explored in sorted order so the witness is stable for a given graph. Each node is
// expanded at most once, which bounds the search by the size of the reachable
// subgraph even when it contains cycles.
func (g *Graph) FindPath(start, target ModuleID) ([]ModuleID, bool) {
	if start == target {
		return []ModuleID{start}, true
	}

	visited := make(Set)
	var path []ModuleID

	var dfs func(id ModuleID) bool
	dfs = func(id ModuleID) bool {
		visited[id] = struct{}{}
		path = append(path, id)

		if id == target {
			return true
		}

		for _, next := range g.neighbors(id) {
			if visited.Has(next) {
				continue
			}
			if dfs(next) {
				return true
			}
		}

		// Dead end, backtrack
		path = path[:len(path)-1]
		return false
	}

	if !dfs(start) {
		return nil, false
	}

	result := make([]ModuleID, len(path))
	copy(result, path)
	return result, true
}
