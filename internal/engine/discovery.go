package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/modguard/internal/state"
	"github.com/leapstack-labs/modguard/pkg/extract"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// DiscoveryOptions configures the discovery process.
type DiscoveryOptions struct {
	ForceFullRefresh bool     // Ignore content hashes, re-extract everything
	SourceDirs       []string // Override configured source directories
}

// DiscoveryResult contains statistics about the discovery run.
type DiscoveryResult struct {
	RunID string

	FilesTotal   int
	FilesChanged int
	FilesSkipped int
	FilesDeleted int

	Modules  int
	External int

	// Owners declared by more than one file; the later file in path order wins.
	Duplicates []DuplicateModule

	// Errors (non-fatal)
	Errors []DiscoveryError

	// Timing
	Duration time.Duration
}

// DuplicateModule records a module declared in several files.
type DuplicateModule struct {
	Module modgraph.ModuleID
	Files  []string
}

// DiscoveryError represents a non-fatal error during discovery.
type DiscoveryError struct {
	Path    string
	Type    string // "read", "parse", "syntax", "save"
	Message string
}

func (e DiscoveryError) Error() string {
	return fmt.Sprintf("%s: %s error: %s", e.Path, e.Type, e.Message)
}

// HasErrors returns true if any errors occurred.
func (r *DiscoveryResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a human-readable summary.
func (r *DiscoveryResult) Summary() string {
	return fmt.Sprintf(
		"Files: %d total (%d changed, %d skipped, %d deleted) | Modules: %d (%d external) | Duration: %s",
		r.FilesTotal, r.FilesChanged, r.FilesSkipped, r.FilesDeleted,
		r.Modules, r.External,
		r.Duration.Round(time.Millisecond),
	)
}

// fileOutcome is the per-file result of the extraction phase.
type fileOutcome struct {
	records []modgraph.DependencyRecord
	skipped bool
	errs    []DiscoveryError
}

// Discover scans the project, extracts changed files, purges deleted ones and
// rebuilds the module graph from scratch.
func (e *Engine) Discover(ctx context.Context, opts DiscoveryOptions) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	run, err := e.store.CreateRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	result.RunID = run.ID

	e.logger.Info("starting discovery", "run_id", run.ID, "root", e.root)

	graph, records, err := e.discover(ctx, opts, result)
	result.Duration = time.Since(start)

	status, errMsg := state.RunStatusCompleted, ""
	if err != nil {
		status, errMsg = state.RunStatusFailed, err.Error()
	}
	stats := state.RunStats{FilesTotal: result.FilesTotal, Modules: result.Modules}
	// Record the outcome even when the caller's context is already done.
	if cerr := e.store.CompleteRun(context.WithoutCancel(ctx), run.ID, status, stats, errMsg); cerr != nil {
		e.logger.Warn("failed to complete run", "run_id", run.ID, "error", cerr)
	}
	if err != nil {
		return result, err
	}

	e.mu.Lock()
	e.graph = graph
	e.records = records
	e.lastRun = run
	e.mu.Unlock()

	e.logger.Info("discovery completed",
		"files_total", result.FilesTotal,
		"files_changed", result.FilesChanged,
		"files_skipped", result.FilesSkipped,
		"files_deleted", result.FilesDeleted,
		"modules", result.Modules,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

func (e *Engine) discover(ctx context.Context, opts DiscoveryOptions, result *DiscoveryResult) (*modgraph.Graph, []modgraph.DependencyRecord, error) {
	dirs := e.sourceDirs
	if len(opts.SourceDirs) > 0 {
		dirs = opts.SourceDirs
	}

	files, err := e.scanFiles(ctx, dirs)
	if err != nil {
		return nil, nil, fmt.Errorf("file scan failed: %w", err)
	}
	result.FilesTotal = len(files)

	outcomes, err := e.extractAll(ctx, files, opts.ForceFullRefresh)
	if err != nil {
		return nil, nil, err
	}

	var records []modgraph.DependencyRecord
	for _, out := range outcomes {
		if out.skipped {
			result.FilesSkipped++
		} else if out.records != nil {
			result.FilesChanged++
		}
		result.Errors = append(result.Errors, out.errs...)
		records = append(records, out.records...)
	}

	deleted, err := e.purgeDeleted(ctx, files)
	if err != nil {
		return nil, nil, err
	}
	result.FilesDeleted = deleted

	result.Duplicates = findDuplicates(records)
	for _, dup := range result.Duplicates {
		e.logger.Debug("module declared more than once, last file wins",
			"module", dup.Module, "files", dup.Files)
	}

	graph := modgraph.Build(records)
	result.Modules = graph.Len()
	result.External = len(graph.ExternalModules())

	return graph, records, nil
}

// scanFiles walks source dirs and returns root-relative slash paths, sorted and unique.
func (e *Engine) scanFiles(ctx context.Context, dirs []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, dir := range dirs {
		base := dir
		if !filepath.IsAbs(base) {
			base = filepath.Join(e.root, dir)
		}
		if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
			e.logger.Debug("source dir does not exist", "dir", base)
			continue
		}

		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			rel, err := filepath.Rel(e.root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel != "." && matchAny(e.exclude, rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !matchAny(e.include, rel) || matchAny(e.exclude, rel) {
				return nil
			}
			if !seen[rel] {
				seen[rel] = true
				files = append(files, rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", base, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// extractAll processes files in parallel. Outcomes keep the order of files.
// Only context cancellation aborts; per-file problems become DiscoveryErrors.
func (e *Engine) extractAll(ctx context.Context, files []string, force bool) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.extractFile(gctx, rel, force)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction aborted: %w", err)
	}
	return outcomes, nil
}

// extractFile reuses cached records when the content hash is unchanged.
func (e *Engine) extractFile(ctx context.Context, rel string, force bool) fileOutcome {
	content, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(rel))) //nolint:gosec // G304: path comes from WalkDir under root
	if err != nil {
		return fileOutcome{errs: []DiscoveryError{{Path: rel, Type: "read", Message: err.Error()}}}
	}
	hash := extract.HashContent(content)

	if !force {
		entry, err := e.store.GetFile(ctx, rel)
		if err != nil {
			e.logger.Debug("cache lookup failed", "path", rel, "error", err)
		} else if entry != nil && entry.ContentHash == hash {
			e.logger.Debug("skipping unchanged file", "path", rel)
			return fileOutcome{records: entry.Records, skipped: true}
		}
	}

	res, err := e.extractor.Extract(ctx, content, rel)
	if err != nil {
		e.logger.Debug("extract error", "path", rel, "error", err)
		return fileOutcome{errs: []DiscoveryError{{Path: rel, Type: "parse", Message: err.Error()}}}
	}

	out := fileOutcome{records: res.Records}
	if out.records == nil {
		out.records = []modgraph.DependencyRecord{}
	}
	if res.Partial {
		out.errs = append(out.errs, DiscoveryError{Path: rel, Type: "syntax", Message: "source contains syntax errors; references may be incomplete"})
	}

	e.logger.Debug("extracted file", "path", rel, "modules", len(res.Owners()))

	if err := e.store.SaveFile(ctx, &state.FileEntry{Path: rel, ContentHash: hash, Records: res.Records}); err != nil {
		out.errs = append(out.errs, DiscoveryError{Path: rel, Type: "save", Message: err.Error()})
	}
	return out
}

// purgeDeleted removes cache entries for files that no longer exist.
func (e *Engine) purgeDeleted(ctx context.Context, files []string) (int, error) {
	existing, err := e.store.ListFilePaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cached files: %w", err)
	}

	current := make(map[string]bool, len(files))
	for _, f := range files {
		current[f] = true
	}

	var gone []string
	for _, p := range existing {
		if !current[p] {
			gone = append(gone, p)
		}
	}
	if err := e.store.DeleteFiles(ctx, gone); err != nil {
		return 0, fmt.Errorf("failed to purge deleted files: %w", err)
	}
	for _, p := range gone {
		e.logger.Debug("purged deleted file", "path", p)
	}
	return len(gone), nil
}

func findDuplicates(records []modgraph.DependencyRecord) []DuplicateModule {
	files := make(map[modgraph.ModuleID][]string)
	for _, rec := range records {
		if rec.Owner.IsZero() {
			continue
		}
		files[rec.Owner] = append(files[rec.Owner], rec.FilePath)
	}

	var dups []DuplicateModule
	for id, paths := range files {
		if len(paths) > 1 {
			dups = append(dups, DuplicateModule{Module: id, Files: paths})
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].Module < dups[j].Module })
	return dups
}
