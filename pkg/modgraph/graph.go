package modgraph

// DependencyRecord is the extraction result for one source unit.
type DependencyRecord struct {
	// Owner is the module declared by the unit; zero if it declares none.
	Owner ModuleID `json:"owner"`
	// Dependencies holds every module referenced in the unit body, excluding Owner.
	Dependencies Set `json:"dependencies"`
	// Activations holds modules explicitly adopted by the owner (use/mixin).
	// Always a subset of Dependencies once the record has been through Build.
	Activations Set `json:"activations"`
	// FilePath is where the unit was read from. Diagnostic only.
	FilePath string `json:"file_path,omitempty"`
}

// Graph maps each declared module to its dependency record.
// Edge targets that are not keys are external leaves with no outgoing edges.
type Graph struct {
	records map[ModuleID]DependencyRecord
}

// Build aggregates per-unit records into a graph.
//
// Records without an owner are skipped. When two records share an owner the later
// one in iteration order replaces the earlier. Build never fails.
func Build(records []DependencyRecord) *Graph {
	g := &Graph{records: make(map[ModuleID]DependencyRecord, len(records))}

	for _, rec := range records {
		if rec.Owner.IsZero() {
			continue
		}
		g.records[rec.Owner] = normalize(rec)
	}

	return g
}

// normalize copies the record's sets so the graph never aliases caller data,
// drops self references and folds activations into dependencies.
func normalize(rec DependencyRecord) DependencyRecord {
	deps := make(Set, len(rec.Dependencies)+len(rec.Activations))
	for id := range rec.Dependencies {
		deps.Add(id)
	}
	acts := make(Set, len(rec.Activations))
	for id := range rec.Activations {
		acts.Add(id)
		deps.Add(id)
	}
	deps.Remove(rec.Owner)
	acts.Remove(rec.Owner)

	return DependencyRecord{
		Owner:        rec.Owner,
		Dependencies: deps,
		Activations:  acts,
		FilePath:     rec.FilePath,
	}
}

// Record returns the record owned by id. The second result is false for
// external modules and unknown IDs.
func (g *Graph) Record(id ModuleID) (DependencyRecord, bool) {
	rec, ok := g.records[id]
	return rec, ok
}

// Contains reports whether id was declared by an analysed unit.
func (g *Graph) Contains(id ModuleID) bool {
	_, ok := g.records[id]
	return ok
}

// DirectDependencies returns a copy of the direct dependencies of id.
// External and unknown modules have none.
func (g *Graph) DirectDependencies(id ModuleID) Set {
	rec, ok := g.records[id]
	if !ok {
		return Set{}
	}
	return rec.Dependencies.Clone()
}

// Activations returns a copy of the modules id explicitly activates.
func (g *Graph) Activations(id ModuleID) Set {
	rec, ok := g.records[id]
	if !ok {
		return Set{}
	}
	return rec.Activations.Clone()
}

// Modules returns all declared modules in lexical order.
func (g *Graph) Modules() []ModuleID {
	ids := make([]ModuleID, 0, len(g.records))
	for id := range g.records {
		ids = append(ids, id)
	}
	// Sort for deterministic output
	sortIDs(ids)
	return ids
}

// Len returns the number of declared modules.
func (g *Graph) Len() int {
	return len(g.records)
}

// EdgeCount returns the number of direct-dependency edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, rec := range g.records {
		count += rec.Dependencies.Len()
	}
	return count
}

// IsExternal reports whether id is referenced by the graph but not declared in it.
func (g *Graph) IsExternal(id ModuleID) bool {
	if g.Contains(id) {
		return false
	}
	for _, rec := range g.records {
		if rec.Dependencies.Has(id) {
			return true
		}
	}
	return false
}

// ExternalModules returns every referenced module that no analysed unit declares.
func (g *Graph) ExternalModules() []ModuleID {
	ext := make(Set)
	for _, rec := range g.records {
		for id := range rec.Dependencies {
			if !g.Contains(id) {
				ext.Add(id)
			}
		}
	}
	return ext.Sorted()
}

// Dependents returns the declared modules that directly depend on id.
func (g *Graph) Dependents(id ModuleID) []ModuleID {
	var out []ModuleID
	for owner, rec := range g.records {
		if rec.Dependencies.Has(id) {
			out = append(out, owner)
		}
	}
	sortIDs(out)
	return out
}

// neighbors returns the direct dependencies of id in sorted order.
func (g *Graph) neighbors(id ModuleID) []ModuleID {
	rec, ok := g.records[id]
	if !ok {
		return nil
	}
	return rec.Dependencies.Sorted()
}
