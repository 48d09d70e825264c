package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of file events (editor saves, git checkouts).
const watchDebounce = 200 * time.Millisecond

// watchAndCheck runs check once, then again after every batch of source changes
// until interrupted. Violations do not stop the loop.
func watchAndCheck(ctx context.Context, cmdCtx *CommandContext, opts *CheckOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchSourceDirs(watcher, cmdCtx.Engine.Root(), cmdCtx.Cfg.SourceDirs); err != nil {
		return err
	}

	r := cmdCtx.Renderer
	pass := func(fullRefresh bool) {
		report, err := checkOnce(ctx, cmdCtx, opts, fullRefresh)
		if err != nil {
			if ctx.Err() == nil {
				r.Error(err.Error())
			}
			return
		}
		if err := renderCheckReport(r, report); err != nil {
			r.Error(err.Error())
		}
		r.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", strings.Join(cmdCtx.Cfg.SourceDirs, ", ")))
	}

	pass(opts.FullRefresh)
	watchLoop(ctx, watcher, watchDebounce, cmdCtx.Logger, func() { pass(false) })
	return nil
}

// watchSourceDirs watches every source dir. Relative dirs resolve against root,
// matching discovery.
func watchSourceDirs(watcher *fsnotify.Watcher, root string, dirs []string) error {
	for _, dir := range dirs {
		path := dir
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, dir)
		}
		if err := watchDir(watcher, path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return nil
}

// watchDir recursively adds a directory and its subdirectories to the watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != dir && (strings.HasPrefix(name, ".") || name == "_build" || name == "deps") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// isSourceEvent reports whether an event can change extraction output.
func isSourceEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ext := filepath.Ext(event.Name)
	return ext == ".ex" || ext == ".exs"
}

// watchLoop calls run once per debounced batch of source events until ctx is done.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, logger *slog.Logger, run func()) {
	var debounceTimer *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// New directories must be watched too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDir(watcher, event.Name); err != nil {
						logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !isSourceEvent(event) {
				continue
			}
			logger.Debug("source changed", "path", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
