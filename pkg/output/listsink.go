package output

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

// list is one category file. Its mutex serializes writers of this category
// only, so different categories are written concurrently.
type list struct {
	mu    sync.Mutex
	file  afero.File
	w     *bufio.Writer
	count int64
}

// ListSink writes one newline-delimited path list per category into a
// directory: all.txt, utf-8.txt, utf-16.txt and iso-8859-1.txt.
type ListSink struct {
	dir   string
	log   logger.Logger
	lists map[Category]*list
}

// NewListSink creates dir if needed and truncates every category file.
func NewListSink(fs afero.Fs, dir string, log logger.Logger) (*ListSink, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	s := &ListSink{
		dir:   dir,
		log:   log,
		lists: make(map[Category]*list, len(Categories)),
	}

	for _, c := range Categories {
		path := filepath.Join(dir, c.FileName())
		f, err := fs.Create(path)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		s.lists[c] = &list{file: f, w: bufio.NewWriter(f)}
	}

	log.WithFields(logger.Fields{
		"dir": dir,
	}).Debug("Opened category lists")

	return s, nil
}

// Dir is the output directory.
func (s *ListSink) Dir() string {
	return s.dir
}

func (s *ListSink) Record(category Category, path string) error {
	l, ok := s.lists[category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.w == nil {
		return fmt.Errorf("record %s: sink closed", category)
	}
	if _, err := l.w.WriteString(path); err != nil {
		return fmt.Errorf("record %s: %w", category, err)
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("record %s: %w", category, err)
	}
	l.count++
	return nil
}

// Close flushes and closes every list. It is safe to call more than once.
func (s *ListSink) Close() error {
	var errs []error
	for _, c := range Categories {
		l, ok := s.lists[c]
		if !ok {
			continue
		}

		l.mu.Lock()
		if l.w != nil {
			if err := l.w.Flush(); err != nil {
				errs = append(errs, fmt.Errorf("flush %s: %w", c, err))
			}
			if err := l.file.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", c, err))
			}
			s.log.WithFields(logger.Fields{
				"category": c,
				"paths":    l.count,
			}).Debug("Closed category list")
			l.w = nil
		}
		l.mu.Unlock()
	}
	return errors.Join(errs...)
}
