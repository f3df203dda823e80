// Package watcher observes library folders and sorts files as they
// appear. Renames performed by the sorter echo back as filesystem
// notifications; an ignore-set of self-caused paths keeps the loop from
// re-processing its own work.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tleroux/attune/internal/config"
	"github.com/tleroux/attune/internal/metadata"
	"github.com/tleroux/attune/internal/sorter"
)

// Watcher dispatches debounced filesystem events to the sorter. A single
// loop owns all state, so events are handled strictly one at a time and
// the ignore-set needs no locking.
type Watcher struct {
	cfg *config.Config
	log *slog.Logger

	roots  map[string]string // watched root folder -> library name
	ignore map[string]struct{}

	// readMetadata overrides tag extraction in tests. Nil means the
	// sorter default.
	readMetadata func(path string) (*metadata.Metadata, error)
}

// New builds a Watcher over the libraries selected by the watch section
// of cfg.
func New(cfg *config.Config, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:    cfg,
		log:    logger,
		roots:  cfg.WatchedRoots(),
		ignore: make(map[string]struct{}),
	}
}

// Run watches every configured root until ctx is cancelled. Per-event
// failures are logged and the loop keeps going; only a broken notifier
// ends the run with an error.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.roots) == 0 {
		w.log.Info("no directories to watch")
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for root := range w.roots {
		if err := w.addTree(fsw, root); err != nil {
			return err
		}
	}

	w.log.Info("watching libraries")
	return w.loop(ctx, fsw.Events, fsw.Errors, func(path string) {
		w.maybeAddDir(fsw, path)
	})
}

// loop drains notifications. Raw events are coalesced per path during the
// configured debounce window, then handled in arrival order. Handling is
// synchronous: a sort completes before the next batch is examined. addDir
// is called for every Create so directories made after startup join the
// watch.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, addDir func(path string)) error {
	var (
		mu      sync.Mutex
		pending []string
		queued  = make(map[string]struct{})
		timer   *time.Timer
		batches = make(chan []string, 1)
	)

	debounce := w.cfg.Every()
	fire := func() {
		mu.Lock()
		batch := pending
		pending = nil
		clear(queued)
		mu.Unlock()
		if len(batch) == 0 {
			return
		}
		select {
		case batches <- batch:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-events:
			if !ok {
				return errors.New("event channel closed unexpectedly")
			}
			// Create also covers the destination side of a rename on
			// every platform fsnotify supports.
			if !evt.Has(fsnotify.Create) {
				continue
			}

			addDir(evt.Name)

			mu.Lock()
			if _, dup := queued[evt.Name]; !dup {
				queued[evt.Name] = struct{}{}
				pending = append(pending, evt.Name)
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, fire)
			} else {
				timer.Reset(debounce)
			}
			mu.Unlock()

		case batch := <-batches:
			for _, path := range batch {
				w.handle(path)
			}

		case err, ok := <-errs:
			if !ok {
				return errors.New("error channel closed unexpectedly")
			}
			w.log.Error("watch error", "error", err)
		}
	}
}

// handle processes one debounced path: suppress self-caused events, find
// the owning library, and sort.
func (w *Watcher) handle(path string) {
	if w.suppress(path) {
		return
	}

	root, ok := w.rootFor(path)
	if !ok {
		return
	}
	lib, ok := w.cfg.Library(w.roots[root])
	if !ok {
		return
	}

	opts := sorter.Options{
		Format:       lib.Format,
		Recursive:    true,
		ExfatCompat:  lib.ExfatCompat,
		RemoveEmpty:  true,
		ReadMetadata: w.readMetadata,
		Logger:       w.log,
	}

	info, err := os.Stat(path)
	if err != nil {
		w.log.Error("couldn't stat event path", "path", path, "error", err)
		return
	}

	if info.IsDir() {
		report, err := sorter.SortFolder(root, path, opts)
		if err != nil {
			w.log.Error("sort failed", "path", path, "error", err)
			return
		}
		w.log.Info("done",
			"success", report.Success,
			"total", report.Total,
			"failed", report.Total-report.Success)
		for _, p := range report.NewPaths {
			w.ignorePath(p, root)
		}
		return
	}

	dest, err := sorter.SortFile(root, path, opts)
	if err != nil {
		w.log.Error("sort failed", "path", path, "error", err)
		return
	}
	w.log.Info("done", "success", 1, "total", 1, "failed", 0)
	w.ignorePath(dest, root)
}

// ignorePath records a freshly created destination so the notification it
// is about to trigger gets swallowed. The parent directory is recorded
// too (unless it is the library root itself): creating the destination
// may have created its directory as well.
func (w *Watcher) ignorePath(path, root string) {
	if parent := filepath.Dir(path); parent != root {
		w.ignore[parent] = struct{}{}
	}
	w.ignore[path] = struct{}{}
}

// suppress reports whether path is a self-caused event, consuming the
// matching ignore-set entry so a later identical notification is handled
// normally. A file matches by exact membership; a directory matches when
// the set holds the directory itself or anything beneath it, which also
// swallows notifications for directories the sorter emptied.
func (w *Watcher) suppress(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if _, ok := w.ignore[path]; ok {
			delete(w.ignore, path)
			return true
		}
		prefix := path + string(filepath.Separator)
		for entry := range w.ignore {
			if strings.HasPrefix(entry, prefix) {
				delete(w.ignore, entry)
				return true
			}
		}
		return false
	}

	if _, ok := w.ignore[path]; ok {
		delete(w.ignore, path)
		return true
	}
	return false
}

// rootFor returns the nearest ancestor of path that is a watched root.
func (w *Watcher) rootFor(path string) (string, bool) {
	for p := path; ; p = filepath.Dir(p) {
		if _, ok := w.roots[p]; ok {
			return p, true
		}
		if p == filepath.Dir(p) {
			return "", false
		}
	}
}

// addTree registers root and every directory beneath it. Inaccessible
// subdirectories are skipped with a warning rather than failing the whole
// watch.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.log.Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %q: %w", path, err)
		}
		return nil
	})
}

// maybeAddDir extends the watch to path if it is a directory.
func (w *Watcher) maybeAddDir(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := fsw.Add(path); err != nil {
		w.log.Warn("couldn't watch new directory", "path", path, "error", err)
	}
}
