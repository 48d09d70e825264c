// Package extract turns Elixir source into module dependency records.
//
// Source is parsed with tree-sitter and walked with a visitor. Each top-level
// defmodule yields one modgraph.DependencyRecord holding every module the
// definition references and every module it pulls in with `use`.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/elixir"

	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

const (
	// DefaultMaxFileSize is the largest source file accepted (10 MiB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize triggers a warning log for large files (1 MiB).
	WarnFileSize = 1 * 1024 * 1024
)

var (
	// ErrFileTooLarge is returned when content exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")

	// ErrInvalidContent is returned when content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid file content")
)

// Result is the extraction output for one file.
type Result struct {
	FilePath    string
	ContentHash string
	Records     []modgraph.DependencyRecord

	// Partial is set when the source had syntax errors. Records still hold
	// whatever could be recovered.
	Partial bool
}

// Owners returns the declared modules of the file in source order.
func (r *Result) Owners() []modgraph.ModuleID {
	var out []modgraph.ModuleID
	for _, rec := range r.Records {
		if !rec.Owner.IsZero() {
			out = append(out, rec.Owner)
		}
	}
	return out
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxFileSize sets the maximum file size in bytes. Non-positive values are ignored.
func WithMaxFileSize(bytes int64) Option {
	return func(x *Extractor) {
		if bytes > 0 {
			x.maxFileSize = bytes
		}
	}
}

// WithLogger sets the logger used for large-file and syntax warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// Extractor parses Elixir source files. It is safe for concurrent use:
// every Extract call creates its own tree-sitter parser.
type Extractor struct {
	maxFileSize int64
	logger      *slog.Logger
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	x := &Extractor{
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// HashContent returns the hex sha256 of content, the key used for incremental extraction.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Extract parses content and returns one record per top-level defmodule.
// A file without any defmodule yields a single record with a zero owner.
//
// Syntax errors are tolerated and reported through Result.Partial. Returned
// errors are ErrFileTooLarge, ErrInvalidContent, context errors, or a
// tree-sitter failure.
func (x *Extractor) Extract(ctx context.Context, content []byte, filePath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract canceled before start: %w", err)
	}

	if int64(len(content)) > x.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), x.maxFileSize)
	}
	if len(content) > WarnFileSize {
		x.logger.Warn("parsing large file", "file", filePath, "size_bytes", len(content))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(elixir.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract canceled after tree-sitter: %w", err)
	}

	result := &Result{
		FilePath:    filePath,
		ContentHash: HashContent(content),
	}

	root := tree.RootNode()
	if root == nil {
		return result, nil
	}
	if root.HasError() {
		result.Partial = true
		x.logger.Debug("source contains syntax errors", "file", filePath)
	}

	var modules []*sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if callName(n, content) == "defmodule" {
			modules = append(modules, n)
			return false
		}
		return true
	})

	if len(modules) == 0 {
		rec := collect(root, content, "")
		rec.FilePath = filePath
		result.Records = []modgraph.DependencyRecord{rec}
		return result, nil
	}

	for _, mod := range modules {
		owner := moduleName(mod, content)
		if owner.IsZero() {
			continue
		}
		rec := collect(mod, content, owner)
		rec.FilePath = filePath
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// collect walks node and gathers references for owner.
func collect(node *sitter.Node, src []byte, owner modgraph.ModuleID) modgraph.DependencyRecord {
	sc := newScope(src, owner)
	deps := make(modgraph.Set)
	uses := make(modgraph.Set)

	Walk(node, func(n *sitter.Node) bool {
		switch n.Type() {
		case "call":
			switch callName(n, src) {
			case "defmodule":
				if n == node {
					return true
				}
				declareNested(sc, n)
			case "alias":
				aliasDirective(sc, n, enclosingModule(n, src), deps)
				return false
			case "use":
				if args := callArguments(n); len(args) > 0 {
					for _, id := range sc.resolve(args[0], enclosingModule(n, src)) {
						uses.Add(id)
					}
				}
			}
		case "dot":
			right := n.ChildByFieldName("right")
			if right != nil && (right.Type() == "alias" || right.Type() == "tuple") {
				for _, id := range sc.resolve(n, enclosingModule(n, src)) {
					deps.Add(id)
				}
				return false
			}
		case "alias":
			deps.Add(sc.expand(n.Content(src)))
		}
		return true
	})

	for id := range sc.nested {
		deps.Remove(id)
		uses.Remove(id)
	}
	deps.Remove(owner)
	uses.Remove(owner)
	for id := range uses {
		deps.Add(id)
	}

	return modgraph.DependencyRecord{
		Owner:        owner,
		Dependencies: deps,
		Activations:  uses,
	}
}

// declareNested records a nested module and its implicit alias:
// `defmodule Inner` inside Outer makes Inner mean Outer.Inner.
func declareNested(sc *scope, call *sitter.Node) {
	id := moduleName(call, sc.src)
	if id.IsZero() {
		return
	}
	sc.nested.Add(id)

	args := callArguments(call)
	if len(args) == 0 || args[0].Type() != "alias" {
		return
	}
	enclosing := enclosingModule(call, sc.src)
	short := firstSegment(args[0].Content(sc.src))
	sc.register(short, join(enclosing, short))
}

// aliasDirective handles `alias Foo.Bar`, `alias Foo.Bar, as: B` and
// `alias Foo.{Bar, Baz}`. Aliased modules are references themselves.
func aliasDirective(sc *scope, call *sitter.Node, enclosing modgraph.ModuleID, deps modgraph.Set) {
	args := callArguments(call)
	if len(args) == 0 {
		return
	}
	targets := sc.resolve(args[0], enclosing)
	as := keywordValue(args, "as", sc.src)

	for _, target := range targets {
		deps.Add(target)
		short := lastSegment(target)
		if as != nil && len(targets) == 1 {
			short = as.Content(sc.src)
		}
		sc.register(short, target)
	}
}

// moduleName returns the full name declared by a defmodule call,
// prefixing the enclosing module for nested definitions.
func moduleName(call *sitter.Node, src []byte) modgraph.ModuleID {
	args := callArguments(call)
	if len(args) == 0 {
		return ""
	}
	enclosing := enclosingModule(call, src)

	switch args[0].Type() {
	case "alias":
		name := args[0].Content(src)
		if enclosing.IsZero() {
			return modgraph.ParseModuleID(name)
		}
		return join(enclosing, name)
	case "dot":
		ids := newScope(src, enclosing).resolve(args[0], enclosing)
		if len(ids) == 1 {
			return ids[0]
		}
	}
	return ""
}

// enclosingModule returns the module whose body contains node, or zero at top level.
func enclosingModule(node *sitter.Node, src []byte) modgraph.ModuleID {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if callName(p, src) == "defmodule" {
			return moduleName(p, src)
		}
	}
	return ""
}
