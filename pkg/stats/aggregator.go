// Package stats owns the run-wide counters. A single goroutine applies every
// Event, so classification workers never touch RunStats directly.
package stats

import (
	"sync"
	"time"

	"github.com/haampie/classify-text-experiment/pkg/classify"
	"github.com/haampie/classify-text-experiment/pkg/logger"
	"github.com/haampie/classify-text-experiment/pkg/progress"
)

const (
	// DefaultProgressEvery is the usual cadence of periodic progress lines.
	DefaultProgressEvery = 10000

	defaultBufferSize = 256

	// pendingLines is how many periodic lines may wait for a slow reporter
	// before further ones are dropped.
	pendingLines = 16
)

// Config configures an Aggregator.
type Config struct {
	// ProgressEvery emits a progress line after every N classified files.
	// Zero disables periodic lines; the final line is always emitted.
	ProgressEvery int64

	// BufferSize is the capacity of the event channel.
	BufferSize int
}

// Aggregator applies Events to RunStats on its own goroutine and drives the
// progress reporter.
type Aggregator struct {
	cfg      Config
	reporter progress.Reporter
	log      logger.Logger

	events chan Event
	done   chan struct{}

	// lines hands periodic progress lines to the reporting goroutine. Lines
	// due while it is full are dropped.
	lines    chan string
	reported chan struct{}
	dropped  int64

	// sendMu makes Close wait for in-flight Observe calls.
	sendMu sync.RWMutex
	closed bool

	mu    sync.Mutex
	stats RunStats
	final RunStats
}

// NewAggregator starts the aggregator goroutine. Close must be called to
// stop it.
func NewAggregator(cfg Config, reporter progress.Reporter, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	if reporter == nil {
		reporter = progress.Discard
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.ProgressEvery < 0 {
		cfg.ProgressEvery = 0
	}

	a := &Aggregator{
		cfg:      cfg,
		reporter: reporter,
		log:      log,
		events:   make(chan Event, cfg.BufferSize),
		done:     make(chan struct{}),
		lines:    make(chan string, pendingLines),
		reported: make(chan struct{}),
		stats:    newRunStats(),
	}

	go a.report()
	go a.loop()
	return a
}

// Observe queues an event. It blocks only while the channel buffer is full,
// which the reporter cannot cause: periodic lines are dropped while it is
// busy.
// Events observed after Close are dropped.
func (a *Aggregator) Observe(ev Event) {
	a.sendMu.RLock()
	defer a.sendMu.RUnlock()

	if a.closed {
		a.log.WithFields(logger.Fields{"path": ev.Path}).Warn("Event observed after close")
		return
	}
	a.events <- ev
}

// Close drains the pending events, emits the final progress line and returns
// the final counters. Further calls return the same value.
func (a *Aggregator) Close() RunStats {
	a.sendMu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.sendMu.Unlock()

	<-a.done
	return a.final.clone()
}

// Snapshot returns a copy of the current counters.
func (a *Aggregator) Snapshot() RunStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats.clone()
}

func (a *Aggregator) loop() {
	defer close(a.done)

	for ev := range a.events {
		a.mu.Lock()
		emit := a.apply(ev)
		var line string
		if emit {
			line = FormatLine(a.stats)
		}
		a.mu.Unlock()

		if emit {
			select {
			case a.lines <- line:
			default:
				a.dropped++
			}
		}
	}

	close(a.lines)
	<-a.reported

	a.mu.Lock()
	a.stats.EndTime = time.Now()
	a.final = a.stats.clone()
	a.mu.Unlock()

	a.reporter.Done(FormatLine(a.final))

	a.log.WithFields(logger.Fields{
		"files":        a.final.Files,
		"binary":       a.final.Binary,
		"unclassified": a.final.Unclassified,
		"errors":       a.final.Errors,
		"skipped":      a.final.Skipped,
		"bytesRead":    a.final.BytesRead,
		"bytesTotal":   a.final.BytesTotal,
		"duration":     a.final.Elapsed(),
		"droppedLines": a.dropped,
	}).Info("Run finished")
}

// report writes periodic lines so a slow progress writer never stalls the
// event loop.
func (a *Aggregator) report() {
	defer close(a.reported)
	for line := range a.lines {
		a.reporter.Report(line)
	}
}

// apply mutates the counters and reports whether a periodic progress line is
// due. Callers hold a.mu.
func (a *Aggregator) apply(ev Event) bool {
	switch ev.Type {
	case EventSkipped:
		a.stats.Skipped++
		return false
	case EventMetadataError:
		a.stats.Errors++
		return false
	}

	s := &a.stats
	s.Files++
	s.BytesTotal += ev.Size
	s.BytesRead += ev.Result.BytesRead

	switch ev.Result.Kind {
	case classify.Binary:
		s.Binary++
	case classify.Text:
		s.PerEncoding[ev.Result.Encoding]++
	case classify.Unclassified:
		s.Unclassified++
	case classify.Error:
		s.Errors++
	}

	return a.cfg.ProgressEvery > 0 && s.Files%a.cfg.ProgressEvery == 0
}
