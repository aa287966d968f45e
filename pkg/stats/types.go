package stats

import (
	"fmt"
	"time"

	"github.com/haampie/classify-text-experiment/pkg/classify"
)

// EventType tells the aggregator how to account for an Event.
type EventType int

const (
	// EventClassified carries the classification of one candidate.
	EventClassified EventType = iota
	// EventSkipped is a traversal entry rejected by the filter.
	EventSkipped
	// EventMetadataError is a traversal entry that could not be stat'd.
	EventMetadataError
)

// Event is a single observation sent to the Aggregator.
type Event struct {
	Type   EventType
	Path   string
	Size   int64
	Result classify.Classification
}

// RunStats accumulates the counts of one run. It is owned by the Aggregator;
// everyone else works on copies.
type RunStats struct {
	// Files is the number of candidates handed to the classifier.
	Files        int64
	Binary       int64
	Unclassified int64
	Errors       int64
	Skipped      int64

	PerEncoding map[classify.Encoding]int64

	// BytesRead can exceed BytesTotal: rejected attempts re-read the stream.
	BytesRead  int64
	BytesTotal int64

	StartTime time.Time
	EndTime   time.Time
}

func newRunStats() RunStats {
	return RunStats{
		PerEncoding: make(map[classify.Encoding]int64, len(classify.DefaultEncodings)),
		StartTime:   time.Now(),
	}
}

// Count returns the number of files accepted as enc.
func (s RunStats) Count(enc classify.Encoding) int64 {
	return s.PerEncoding[enc]
}

// Text is the number of files accepted under any encoding.
func (s RunStats) Text() int64 {
	var n int64
	for _, c := range s.PerEncoding {
		n += c
	}
	return n
}

// Percent is BytesRead relative to BytesTotal, 0 for an empty run.
func (s RunStats) Percent() float64 {
	if s.BytesTotal == 0 {
		return 0
	}
	return float64(s.BytesRead) / float64(s.BytesTotal) * 100
}

// Elapsed is the run duration, measured up to now while the run is active.
func (s RunStats) Elapsed() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

func (s RunStats) clone() RunStats {
	c := s
	c.PerEncoding = make(map[classify.Encoding]int64, len(s.PerEncoding))
	for k, v := range s.PerEncoding {
		c.PerEncoding[k] = v
	}
	return c
}

// FormatLine renders the fixed-width progress line.
func FormatLine(s RunStats) string {
	return fmt.Sprintf("%7d files: utf-8: %7d, utf-16: %7d, iso-8859-1: %7d. %12d / %12d bytes read [%6.2f%%]",
		s.Files,
		s.Count(classify.UTF8),
		s.Count(classify.UTF16),
		s.Count(classify.ISO88591),
		s.BytesRead,
		s.BytesTotal,
		s.Percent())
}
