/*
Package scanner enumerates a directory tree and decides which entries are
classification candidates.

The walker lstats every entry (symlinks are never followed), prunes excluded
subtrees and hands accepted candidates to a callback in a deterministic,
name-sorted depth-first order. Failures on individual entries are reported
through an error callback and never stop the walk.

Basic usage:

	filter, err := scanner.NewFilter(scanner.FilterConfig{
		Excludes: scanner.DefaultExcludes,
	}, log)

	w := scanner.NewWalker(afero.NewOsFs(), filter, log)
	err = w.Walk(ctx, "/opt/spack/store", func(c scanner.Candidate) {
		// classify c
	}, func(err error) {
		// per-entry MetadataError
	})
*/
package scanner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

// CandidateFunc receives each accepted candidate.
type CandidateFunc func(Candidate)

// ErrorFunc receives per-entry failures, always a *MetadataError.
type ErrorFunc func(error)

// SkipFunc receives entries the filter rejected.
type SkipFunc func(Candidate, Reason)

// Walker traverses a tree on an afero filesystem.
type Walker struct {
	fs     afero.Fs
	filter *Filter
	log    logger.Logger
	stats  *Stats
	onSkip SkipFunc
}

// NewWalker creates a walker. A nil filter accepts every non-empty regular
// file.
func NewWalker(fs afero.Fs, filter *Filter, log logger.Logger) *Walker {
	if log == nil {
		log = logger.Nop()
	}
	if filter == nil {
		filter = &Filter{log: log}
	}

	return &Walker{
		fs:     fs,
		filter: filter,
		log:    log,
		stats:  &Stats{},
	}
}

// OnSkip registers a hook for rejected file entries. Pruned directories are
// not reported.
func (w *Walker) OnSkip(fn SkipFunc) {
	w.onSkip = fn
}

// Stats returns the live walker counters.
func (w *Walker) Stats() *Stats {
	return w.stats
}

// Walk visits every entry below root. It fails only if root cannot be
// stat'd, root is not a directory, or ctx is cancelled.
func (w *Walker) Walk(ctx context.Context, root string, fn CandidateFunc, onErr ErrorFunc) error {
	if onErr == nil {
		onErr = func(error) {}
	}

	info, err := w.fs.Stat(root)
	if err != nil {
		w.log.WithFields(logger.Fields{
			"error": err,
			"path":  root,
		}).Error("Failed to stat root directory")
		return fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	w.log.WithFields(logger.Fields{
		"path": root,
	}).Info("Starting traversal")

	if err := w.walkDir(ctx, root, fn, onErr); err != nil {
		return err
	}

	w.log.WithFields(logger.Fields{
		"entries":    w.stats.Entries(),
		"candidates": w.stats.Candidates(),
		"skipped":    w.stats.Skipped(),
		"errors":     w.stats.Errors(),
		"dirs":       w.stats.Dirs(),
	}).Info("Traversal completed")

	return nil
}

func (w *Walker) walkDir(ctx context.Context, dir string, fn CandidateFunc, onErr ErrorFunc) error {
	w.stats.addDirs(1)

	names, err := readDirNames(w.fs, dir)
	if err != nil {
		w.entryError(onErr, &MetadataError{Op: "readdir", Path: dir, Err: err})
		return nil
	}

	for _, name := range names {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entryPath := filepath.Join(dir, name)
		w.stats.addEntries(1)

		info, err := lstat(w.fs, entryPath)
		if err != nil {
			w.entryError(onErr, &MetadataError{Op: "lstat", Path: entryPath, Err: err})
			continue
		}

		if info.IsDir() {
			if w.filter.SkipDir(entryPath) {
				w.log.WithFields(logger.Fields{
					"path": entryPath,
				}).Debug("Skipping excluded directory")
				continue
			}
			if err := w.walkDir(ctx, entryPath, fn, onErr); err != nil {
				return err
			}
			continue
		}

		c := NewCandidate(entryPath, info)
		if reason := w.filter.Check(c); reason != Accepted {
			w.stats.addSkipped(1)
			w.log.WithFields(logger.Fields{
				"path":    entryPath,
				"reason":  reason.String(),
				"symlink": c.IsSymlink(),
			}).Debug("Entry rejected")
			if w.onSkip != nil {
				w.onSkip(c, reason)
			}
			continue
		}

		w.stats.addCandidates(1)
		fn(c)
	}

	return nil
}

// entryError counts and logs a per-entry failure by its cause, then hands it
// to onErr. Entries removed while the walk runs are expected on a live tree.
func (w *Walker) entryError(onErr ErrorFunc, err *MetadataError) {
	w.stats.addErrors(1)

	log := w.log.WithFields(logger.Fields{
		"error": err.Err,
		"op":    err.Op,
		"path":  err.Path,
	})
	switch {
	case IsNotExist(err):
		log.Debug("Entry vanished during traversal")
	case IsPermission(err):
		log.Warn("Permission denied")
	default:
		log.Warn("Failed to read entry metadata")
	}

	onErr(err)
}
