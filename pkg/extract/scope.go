package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// scope tracks alias directives seen so far inside one top-level module.
// Aliases apply from their declaration to the end of the module; nested
// block scoping is not tracked.
type scope struct {
	src     []byte
	owner   modgraph.ModuleID
	aliases map[string]modgraph.ModuleID
	nested  modgraph.Set
}

func newScope(src []byte, owner modgraph.ModuleID) *scope {
	return &scope{
		src:     src,
		owner:   owner,
		aliases: make(map[string]modgraph.ModuleID),
		nested:  make(modgraph.Set),
	}
}

// expand resolves a dotted alias through the alias table.
// Only the first segment is looked up, matching Elixir's expansion.
func (s *scope) expand(name string) modgraph.ModuleID {
	id := modgraph.ParseModuleID(name)
	segs := id.Segments()
	if len(segs) == 0 {
		return ""
	}
	full, ok := s.aliases[segs[0]]
	if !ok {
		return id
	}
	return modgraph.NewModuleID(append(full.Segments(), segs[1:]...)...)
}

// register binds short to full for the rest of the module.
func (s *scope) register(short string, full modgraph.ModuleID) {
	if short == "" || full.IsZero() {
		return
	}
	s.aliases[short] = full
}

// resolve turns a module expression node into module IDs. It understands
// plain aliases, `__MODULE__`, `__MODULE__.Sub`, `Base.Sub` and the
// multi-alias form `Base.{A, B}`.
func (s *scope) resolve(node *sitter.Node, enclosing modgraph.ModuleID) []modgraph.ModuleID {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "alias":
		if id := s.expand(node.Content(s.src)); !id.IsZero() {
			return []modgraph.ModuleID{id}
		}
	case "identifier":
		if node.Content(s.src) == "__MODULE__" && !enclosing.IsZero() {
			return []modgraph.ModuleID{enclosing}
		}
	case "dot":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left == nil || right == nil {
			return nil
		}
		bases := s.resolve(left, enclosing)
		if len(bases) != 1 {
			return nil
		}
		base := bases[0]
		switch right.Type() {
		case "alias":
			return []modgraph.ModuleID{join(base, right.Content(s.src))}
		case "tuple":
			var out []modgraph.ModuleID
			for i := 0; i < int(right.NamedChildCount()); i++ {
				child := right.NamedChild(i)
				if child.Type() == "alias" {
					out = append(out, join(base, child.Content(s.src)))
				}
			}
			return out
		}
	}
	return nil
}

func join(base modgraph.ModuleID, rest string) modgraph.ModuleID {
	return modgraph.NewModuleID(append(base.Segments(), modgraph.ParseModuleID(rest).Segments()...)...)
}

func lastSegment(id modgraph.ModuleID) string {
	segs := id.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func firstSegment(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
