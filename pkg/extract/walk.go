package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Walk traverses a syntax tree depth-first and calls fn for each node.
// If fn returns false, the node's children are skipped.
func Walk(node *sitter.Node, fn func(node *sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), fn)
	}
}

// callName returns the identifier a call is made through, e.g. "defmodule"
// for `defmodule Foo do ... end`. Qualified calls (`Foo.bar()`) return "".
func callName(node *sitter.Node, src []byte) string {
	if node == nil || node.Type() != "call" {
		return ""
	}
	target := node.ChildByFieldName("target")
	if target == nil {
		target = node.NamedChild(0)
	}
	if target == nil || target.Type() != "identifier" {
		return ""
	}
	return target.Content(src)
}

// callArguments returns the named children of a call's argument list.
func callArguments(node *sitter.Node) []*sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "arguments" {
			continue
		}
		args := make([]*sitter.Node, 0, child.NamedChildCount())
		for j := 0; j < int(child.NamedChildCount()); j++ {
			args = append(args, child.NamedChild(j))
		}
		return args
	}
	return nil
}

// keywordValue finds `key: value` in a keyword list argument.
func keywordValue(args []*sitter.Node, key string, src []byte) *sitter.Node {
	for _, arg := range args {
		if arg.Type() != "keywords" {
			continue
		}
		for i := 0; i < int(arg.NamedChildCount()); i++ {
			pair := arg.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			k := pair.ChildByFieldName("key")
			if k == nil {
				k = pair.NamedChild(0)
			}
			if k == nil || keywordName(k.Content(src)) != key {
				continue
			}
			v := pair.ChildByFieldName("value")
			if v == nil {
				v = pair.NamedChild(1)
			}
			return v
		}
	}
	return nil
}

func keywordName(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), ":")
}
