package modgraph

import "sort"

// HasCycle returns true if the declared modules contain a dependency cycle,
// along with one cycle path whose first and last elements are the same module.
func (g *Graph) HasCycle() (bool, []ModuleID) {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return false, nil
	}
	return true, cycles[0]
}

// Cycles returns one witness cycle per strongly connected group of declared
// modules. Each cycle starts and ends at the lexically smallest member of its
// group, e.g. [A, B, C, A]. Cycles are ordered by their first module.
//
// External leaves can never be part of a cycle since they have no outgoing edges.
func (g *Graph) Cycles() [][]ModuleID {
	var cycles [][]ModuleID
	for _, component := range g.stronglyConnected() {
		if len(component) < 2 {
			continue
		}
		if cycle := g.cycleThrough(component); cycle != nil {
			cycles = append(cycles, cycle)
		}
	}
	return cycles
}

// cycleThrough builds [m, ..., m] for the smallest member m of a component.
// Any path from a successor of m back to m stays inside the component.
func (g *Graph) cycleThrough(component []ModuleID) []ModuleID {
	head := component[0]
	members := NewSet(component...)

	for _, next := range g.neighbors(head) {
		if !members.Has(next) {
			continue
		}
		back, ok := g.FindPath(next, head)
		if !ok {
			continue
		}
		return append([]ModuleID{head}, back...)
	}
	return nil
}

// stronglyConnected runs Tarjan's algorithm over declared modules and returns the
// components with members sorted, components ordered by their first member.
func (g *Graph) stronglyConnected() [][]ModuleID {
	index := 0
	indices := make(map[ModuleID]int)
	lowlink := make(map[ModuleID]int)
	onStack := make(Set)
	var stack []ModuleID
	var components [][]ModuleID

	var strongConnect func(id ModuleID)
	strongConnect = func(id ModuleID) {
		indices[id] = index
		lowlink[id] = index
		index++
		stack = append(stack, id)
		onStack.Add(id)

		for _, next := range g.neighbors(id) {
			if !g.Contains(next) {
				continue // external leaf
			}
			if _, seen := indices[next]; !seen {
				strongConnect(next)
				lowlink[id] = min(lowlink[id], lowlink[next])
			} else if onStack.Has(next) {
				lowlink[id] = min(lowlink[id], indices[next])
			}
		}

		if lowlink[id] != indices[id] {
			return
		}

		var component []ModuleID
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack.Remove(top)
			component = append(component, top)
			if top == id {
				break
			}
		}
		sortIDs(component)
		components = append(components, component)
	}

	for _, id := range g.Modules() {
		if _, seen := indices[id]; !seen {
			strongConnect(id)
		}
	}

	sortComponents(components)
	return components
}

func sortComponents(components [][]ModuleID) {
	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
}
