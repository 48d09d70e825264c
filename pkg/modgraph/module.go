// Package modgraph provides the whole-program module dependency graph.
// It supports graph construction from extracted references, transitive closure
// queries, and witness path reconstruction for diagnostics.
//
// A Graph is immutable once Build returns and is safe for concurrent readers.
package modgraph

import (
	"encoding/json"
	"sort"
	"strings"
)

// ModuleID identifies a module by its fully-qualified dotted name, e.g. "MyApp.Web.Router".
// Two IDs are equal when their segments are equal.
type ModuleID string

// NewModuleID joins segments into a ModuleID. Empty segments are dropped.
func NewModuleID(segments ...string) ModuleID {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return ModuleID(strings.Join(parts, "."))
}

// ParseModuleID normalises a dotted module name. Surrounding whitespace and
// empty segments ("A..B", ".A") are removed.
func ParseModuleID(s string) ModuleID {
	return NewModuleID(strings.Split(s, ".")...)
}

// Segments returns the dotted-path segments of the ID.
func (id ModuleID) Segments() []string {
	if id == "" {
		return nil
	}
	return strings.Split(string(id), ".")
}

// String returns the dotted form.
func (id ModuleID) String() string {
	return string(id)
}

// IsZero reports whether the ID is empty (no module declared).
func (id ModuleID) IsZero() bool {
	return id == ""
}

// Set is an unordered set of module IDs.
type Set map[ModuleID]struct{}

// NewSet creates a set holding ids.
func NewSet(ids ...ModuleID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. Zero IDs are ignored.
func (s Set) Add(id ModuleID) {
	if id.IsZero() {
		return
	}
	s[id] = struct{}{}
}

// Remove deletes id from the set.
func (s Set) Remove(id ModuleID) {
	delete(s, id)
}

// Has reports whether id is in the set.
func (s Set) Has(id ModuleID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []ModuleID {
	ids := make([]ModuleID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []ModuleID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	ids := s.Sorted()
	if ids == nil {
		ids = []ModuleID{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON decodes a JSON array of module names.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []ModuleID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
