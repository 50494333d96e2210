// Package watch reruns a callback whenever files under a directory change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce collapses bursts of events into one callback.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event. Zero uses DefaultDebounce.
	Debounce time.Duration
	// Skip reports whether a directory must not be watched.
	Skip func(dir string) bool
	// Ignore reports whether an event on path must not trigger a run.
	Ignore func(path string) bool
}

// Watcher runs a callback once at start and once per burst of changes.
type Watcher struct {
	root   string
	opts   Options
	logger hclog.Logger
}

// New creates a Watcher for the tree rooted at root.
func New(root string, opts Options, logger hclog.Logger) *Watcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{root: root, opts: opts, logger: logger}
}

// Run calls onChange immediately and after every debounced burst of events,
// until ctx is done. Callbacks never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %q is not a directory", w.root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, w.root); err != nil {
		return err
	}

	onChange()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.opts.Ignore != nil && w.opts.Ignore(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.addRecursive(watcher, ev.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			w.logger.Trace("change detected", "path", ev.Name, "op", ev.Op.String())
			stopTimer()
			timer = time.NewTimer(w.opts.Debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.opts.Skip != nil && w.opts.Skip(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				w.logger.Debug("cannot watch directory", "path", path, "error", err)
				return filepath.SkipDir
			}
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
		return nil
	})
}
