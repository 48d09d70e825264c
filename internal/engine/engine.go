// Package engine discovers Elixir sources, extracts their module references
// and builds the module dependency graph for a project.
// It handles file selection, incremental extraction and run bookkeeping.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/modguard/internal/state"
	"github.com/leapstack-labs/modguard/pkg/extract"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// Default file selection.
var (
	DefaultSourceDirs = []string{"lib"}
	DefaultInclude    = []string{"**/*.ex", "**/*.exs"}
	DefaultExclude    = []string{"deps/**", "_build/**"}
)

// Engine owns the state store and the graph of the last discovery.
type Engine struct {
	logger *slog.Logger

	root       string
	sourceDirs []string
	include    []string
	exclude    []string
	workers    int

	extractor *extract.Extractor
	store     *state.SQLiteStore

	mu      sync.RWMutex
	graph   *modgraph.Graph
	records []modgraph.DependencyRecord
	lastRun *state.Run
}

// Config holds engine configuration.
type Config struct {
	// Root is the project root. Source dirs and globs are relative to it.
	Root string
	// SourceDirs are walked for source files
	SourceDirs []string
	// Include and Exclude are doublestar globs over root-relative slash paths
	Include []string
	Exclude []string
	// StatePath is the path to the SQLite state database (":memory:" when empty)
	StatePath string
	// Workers bounds parallel extraction (NumCPU when zero)
	Workers int
	// MaxFileSize overrides the extractor's size limit when positive
	MaxFileSize int64
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine and opens its state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	root := cfg.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	include := orDefault(cfg.Include, DefaultInclude)
	exclude := orDefault(cfg.Exclude, DefaultExclude)
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	} else if !filepath.IsAbs(statePath) {
		statePath = filepath.Join(absRoot, statePath)
	}

	logger.Debug("initializing engine", "root", absRoot, "state_path", statePath, "workers", workers)

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	opts := []extract.Option{extract.WithLogger(logger)}
	if cfg.MaxFileSize > 0 {
		opts = append(opts, extract.WithMaxFileSize(cfg.MaxFileSize))
	}

	return &Engine{
		logger:     logger,
		root:       absRoot,
		sourceDirs: orDefault(cfg.SourceDirs, DefaultSourceDirs),
		include:    include,
		exclude:    exclude,
		workers:    workers,
		extractor:  extract.New(opts...),
		store:      store,
	}, nil
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return append([]string(nil), def...)
	}
	return v
}

// Close releases the state store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Root returns the absolute project root.
func (e *Engine) Root() string {
	return e.root
}

// Graph returns the graph built by the last Discover, or nil before the first one.
func (e *Engine) Graph() *modgraph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// Records returns the records the current graph was built from, in file order.
func (e *Engine) Records() []modgraph.DependencyRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]modgraph.DependencyRecord(nil), e.records...)
}

// LastRun returns the run started by the last Discover.
func (e *Engine) LastRun() *state.Run {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastRun
}

// RecordViolations stores the diagnostic count on the last run.
func (e *Engine) RecordViolations(ctx context.Context, n int) error {
	run := e.LastRun()
	if run == nil {
		return fmt.Errorf("no run to record violations on")
	}
	return e.store.RecordViolations(ctx, run.ID, n)
}

// Runs returns recent analysis runs, newest first.
func (e *Engine) Runs(ctx context.Context, limit int) ([]*state.Run, error) {
	return e.store.ListRuns(ctx, limit)
}

// ModuleFiles maps each declared module to the file that declared it.
func (e *Engine) ModuleFiles() map[modgraph.ModuleID]string {
	g := e.Graph()
	if g == nil {
		return nil
	}
	out := make(map[modgraph.ModuleID]string, g.Len())
	for _, id := range g.Modules() {
		if rec, ok := g.Record(id); ok {
			out[id] = rec.FilePath
		}
	}
	return out
}
