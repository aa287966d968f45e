package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/haampie/classify-text-experiment/pkg/classify"
)

// Category names one path list.
type Category string

const (
	CategoryAll      Category = "all"
	CategoryUTF8     Category = "utf-8"
	CategoryUTF16    Category = "utf-16"
	CategoryISO88591 Category = "iso-8859-1"
)

// Categories lists every category in output order. Binary files only ever
// appear in CategoryAll.
var Categories = []Category{CategoryAll, CategoryUTF8, CategoryUTF16, CategoryISO88591}

// FileName is the list file for the category inside an output directory.
func (c Category) FileName() string {
	return string(c) + ".txt"
}

func (c Category) valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryFor maps a classification to its encoding list. Only text has one.
func CategoryFor(c classify.Classification) (Category, bool) {
	if c.Kind != classify.Text {
		return "", false
	}
	switch c.Encoding {
	case classify.UTF8:
		return CategoryUTF8, true
	case classify.UTF16:
		return CategoryUTF16, true
	case classify.ISO88591:
		return CategoryISO88591, true
	}
	return "", false
}

// ErrUnknownCategory is returned when recording into a category no list
// exists for.
var ErrUnknownCategory = errors.New("unknown category")

// Sink receives (category, path) pairs. Record may be called from several
// goroutines at once.
type Sink interface {
	Record(category Category, path string) error
	Close() error
}

// Discard accepts and drops every record.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Record(Category, string) error { return nil }
func (discardSink) Close() error                  { return nil }

// MemorySink keeps every list in memory, in recording order.
type MemorySink struct {
	mu    sync.Mutex
	lists map[Category][]string
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{lists: make(map[Category][]string)}
}

func (m *MemorySink) Record(category Category, path string) error {
	if !category.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[category] = append(m.lists[category], path)
	return nil
}

func (m *MemorySink) Close() error { return nil }

// Paths returns a copy of the list for category.
func (m *MemorySink) Paths(category Category) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lists[category]...)
}

// MultiSink fans every record out to all of its sinks.
type MultiSink []Sink

func (ms MultiSink) Record(category Category, path string) error {
	var errs []error
	for _, s := range ms {
		if err := s.Record(category, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ms MultiSink) Close() error {
	var errs []error
	for _, s := range ms {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DigestSink keeps an order-independent digest of each category without
// holding the paths: the sum of the xxhash64 of every path plus a count. Two
// runs over an unchanged tree agree whatever the worker scheduling was.
type DigestSink struct {
	mu   sync.Mutex
	sums map[Category]*digest
}

type digest struct {
	sum   uint64
	count uint64
}

// NewDigestSink creates an empty DigestSink.
func NewDigestSink() *DigestSink {
	return &DigestSink{sums: make(map[Category]*digest, len(Categories))}
}

func (d *DigestSink) Record(category Category, path string) error {
	h := xxhash.Sum64String(path)

	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.sums[category]
	if !ok {
		e = &digest{}
		d.sums[category] = e
	}
	e.sum += h
	e.count++
	return nil
}

func (d *DigestSink) Close() error { return nil }

// Digests returns the digest of every category, including empty ones, as 16
// hex digits.
func (d *DigestSink) Digests() map[Category]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[Category]string, len(Categories))
	for _, c := range Categories {
		var e digest
		if v, ok := d.sums[c]; ok {
			e = *v
		}

		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[:8], e.sum)
		binary.LittleEndian.PutUint64(buf[8:], e.count)
		out[c] = fmt.Sprintf("%016x", xxhash.Sum64(buf[:]))
	}
	return out
}
