// Package sorter moves audio files into the directory layout described by
// a compiled format. A batch run is best-effort: every per-file failure is
// logged and counted, and never stops the remaining files.
package sorter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tleroux/attune/internal/format"
	"github.com/tleroux/attune/internal/metadata"
)

// ErrNoFormat is returned when Options carries no compiled format.
var ErrNoFormat = errors.New("no format to sort with")

// InvalidRootError reports a sort target that is not a directory.
type InvalidRootError struct {
	Path string
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("path %q is not valid as root folder", e.Path)
}

// Options configures one sort run. The same Options value can drive many
// calls; the format inside is read-only.
type Options struct {
	Format      *format.Format
	DryRun      bool
	Recursive   bool
	ExfatCompat bool
	RemoveEmpty bool

	// ReadMetadata extracts tags from one file. Nil means
	// metadata.FromPath.
	ReadMetadata func(path string) (*metadata.Metadata, error)

	// Logger receives per-file progress and failures. Nil means
	// slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.ReadMetadata == nil {
		o.ReadMetadata = metadata.FromPath
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Report is the aggregate outcome of one folder sort.
type Report struct {
	Total   int
	Success int

	// NewPaths lists the destinations created, in no particular order.
	NewPaths []string
}

// frame is one entry of the explicit traversal stack. A directory is
// pushed twice: once to enumerate its children and once (post) to check
// for emptiness after all its children have been handled.
type frame struct {
	path string
	post bool
}

// SortFolder walks dir and sorts every file found into root according to
// the format. The traversal uses an explicit stack so arbitrarily deep
// trees use constant stack space. Files within one directory are handled
// in parallel; a directory's empty-check waits for its files to finish so
// removal never races an in-flight rename.
//
// Only a missing format or a dir that is not a directory are fatal;
// everything per-file is logged and counted in the report.
func SortFolder(root, dir string, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if opts.Format == nil {
		return nil, ErrNoFormat
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &InvalidRootError{Path: dir}
	}

	var (
		total    atomic.Int64
		success  atomic.Int64
		mu       sync.Mutex
		newPaths []string
	)

	stack := []frame{{path: dir}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.post {
			if !opts.RemoveEmpty {
				continue
			}
			entries, readErr := os.ReadDir(f.path)
			if readErr != nil {
				opts.Logger.Error("couldn't re-read folder", "path", f.path, "error", readErr)
				continue
			}
			if len(entries) == 0 {
				opts.Logger.Info("removing empty folder", "path", f.path)
				if rmErr := os.Remove(f.path); rmErr != nil {
					opts.Logger.Error("couldn't remove folder", "path", f.path, "error", rmErr)
				}
			}
			continue
		}

		entries, readErr := os.ReadDir(f.path)
		if readErr != nil {
			opts.Logger.Error("couldn't read folder", "path", f.path, "error", readErr)
			continue
		}

		stack = append(stack, frame{path: f.path, post: true})

		var files []string
		for _, e := range entries {
			child := filepath.Join(f.path, e.Name())
			if e.IsDir() {
				if opts.Recursive {
					stack = append(stack, frame{path: child})
				}
				continue
			}
			files = append(files, child)
		}

		g := new(errgroup.Group)
		g.SetLimit(runtime.NumCPU())
		for _, file := range files {
			file := file
			g.Go(func() error {
				total.Add(1)
				dest, sortErr := SortFile(root, file, opts)
				if sortErr != nil {
					opts.Logger.Error("couldn't sort file", "path", file, "error", sortErr)
					return nil
				}
				success.Add(1)
				mu.Lock()
				newPaths = append(newPaths, dest)
				mu.Unlock()
				return nil
			})
		}
		// Join barrier: the post frame must not observe in-flight renames.
		_ = g.Wait()
	}

	return &Report{
		Total:    int(total.Load()),
		Success:  int(success.Load()),
		NewPaths: newPaths,
	}, nil
}

// SortFile sorts a single file into root and returns its destination.
// With DryRun set, metadata extraction and path building still run (and
// can still fail) but nothing on disk changes.
func SortFile(root, file string, opts Options) (string, error) {
	opts = opts.withDefaults()
	if opts.Format == nil {
		return "", ErrNoFormat
	}

	if opts.DryRun {
		opts.Logger.Info("working on (dryrun)", "path", file)
	} else {
		opts.Logger.Info("working on", "path", file)
	}

	m, err := opts.ReadMetadata(file)
	if err != nil {
		return "", err
	}

	rel, err := opts.Format.BuildPath(m, opts.ExfatCompat)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(root, rel)
	if !opts.DryRun {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", err
		}
		if err := os.Rename(file, dest); err != nil {
			return "", err
		}
	}

	opts.Logger.Info("item created", "path", dest)
	return dest, nil
}
