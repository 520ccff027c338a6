// Package watch re-runs a callback for source files that change under a
// project root.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hannajonsd/ts-introspect/analyzer"
	"github.com/hannajonsd/ts-introspect/logging"
)

// DefaultDebounce is the quiet period before a batch of changes is flushed
const DefaultDebounce = 200 * time.Millisecond

// FlushFunc receives the sorted, existing files changed since the last flush
type FlushFunc func(ctx context.Context, files []string) error

// Watcher watches every analyzable directory under a root
type Watcher struct {
	root     string
	matcher  *analyzer.Matcher
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	pending  map[string]struct{}
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period; non-positive values keep the default
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logging.OrDiscard(l)
	}
}

// New starts watching root. Directories the matcher skips are not watched.
func New(root string, matcher *analyzer.Matcher, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		matcher:  matcher,
		fs:       fsw,
		debounce: DefaultDebounce,
		logger:   logging.Discard(),
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root, false); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its subdirectories. With enqueue set, files
// already present are queued, which covers files written into a new
// directory before its watch was added.
func (w *Watcher) addTree(dir string, enqueue bool) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if info.IsDir() {
			if path != w.root && w.matcher.SkipDirectory(path) {
				return filepath.SkipDir
			}
			if err := w.fs.Add(path); err != nil {
				w.logger.Debug("failed to watch directory", "path", path, "error", err)
				return nil
			}
			w.logger.Debug("watching directory", "path", path)
			return nil
		}
		if enqueue && w.matcher.Match(path) {
			w.pending[path] = struct{}{}
		}
		return nil
	})
}

// Run processes events until ctx is done, calling onFlush once per quiet
// period with the files that changed. Batches run one at a time; an error
// from onFlush stops the watcher.
func (w *Watcher) Run(ctx context.Context, onFlush FlushFunc) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			files := w.flush()
			if len(files) == 0 {
				continue
			}
			w.logger.Info("files changed", "count", len(files))
			if err := onFlush(ctx, files); err != nil {
				return err
			}
		}
	}
}

// handle records one event and reports whether anything was queued
func (w *Watcher) handle(event fsnotify.Event) bool {
	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.matcher.SkipDirectory(event.Name) {
				return false
			}
			before := len(w.pending)
			if err := w.addTree(event.Name, true); err != nil {
				w.logger.Debug("failed to watch new directory", "path", event.Name, "error", err)
			}
			return len(w.pending) > before
		}
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	if !w.matcher.Match(event.Name) {
		return false
	}
	w.pending[event.Name] = struct{}{}
	return true
}

// flush drains the queue, dropping files that no longer exist
func (w *Watcher) flush() []string {
	files := make([]string, 0, len(w.pending))
	for path := range w.pending {
		if _, err := os.Stat(path); err != nil {
			w.logger.Debug("changed file is gone", "path", path)
			continue
		}
		files = append(files, path)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(files)
	return files
}
