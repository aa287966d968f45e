/*
Package audit runs one classification pass over a directory tree.

An Auditor wires the traversal, the candidate filter, the classifier, the
worker pool, the run aggregator and the output sinks together. Every accepted
candidate is recorded in the "all" list before it is classified and, when it
turns out to be text, in the list of its encoding.

Basic usage:

	a := audit.New(audit.Config{Workers: 1}, afero.NewOsFs(), log).
		WithSink(sink).
		WithReporter(reporter)

	result, err := a.Run(ctx, "/opt/spack/store")
*/
package audit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/haampie/classify-text-experiment/pkg/classify"
	"github.com/haampie/classify-text-experiment/pkg/logger"
	"github.com/haampie/classify-text-experiment/pkg/output"
	"github.com/haampie/classify-text-experiment/pkg/progress"
	"github.com/haampie/classify-text-experiment/pkg/scanner"
	"github.com/haampie/classify-text-experiment/pkg/stats"
	"github.com/haampie/classify-text-experiment/pkg/worker"
)

// Config configures an Auditor. The zero value classifies sequentially with
// the default chunk size and excludes.
type Config struct {
	// Workers above 1 classify concurrently and relax list ordering.
	Workers int

	// RateLimit caps classifications started per second in concurrent mode.
	RateLimit float64

	// QueueSize is the pool queue capacity (0 means 2*Workers).
	QueueSize int

	ChunkSize int
	Encodings []classify.Encoding

	// ProgressEvery is the progress cadence in files (0 disables periodic
	// lines).
	ProgressEvery int64

	// Filter.Excludes nil means scanner.DefaultExcludes.
	Filter scanner.FilterConfig
}

// CandidateError is a per-entry failure that did not stop the run.
type CandidateError struct {
	Path string
	Err  error
}

func (e CandidateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e CandidateError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a completed run.
type Result struct {
	Root    string
	Stats   stats.RunStats
	Errors  []CandidateError
	Digests map[output.Category]string
}

// Auditor runs classification passes. It can be reused for several runs.
type Auditor struct {
	cfg      Config
	fs       afero.Fs
	sink     output.Sink
	reporter progress.Reporter
	log      logger.Logger
}

// New creates an Auditor. A nil fs means the OS filesystem and a nil logger
// discards everything.
func New(cfg Config, fs afero.Fs, log logger.Logger) *Auditor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Filter.Excludes == nil {
		cfg.Filter.Excludes = scanner.DefaultExcludes
	}

	return &Auditor{
		cfg:      cfg,
		fs:       fs,
		sink:     output.Discard,
		reporter: progress.Discard,
		log:      log,
	}
}

// WithSink sets where the path lists go. The caller closes the sink.
func (a *Auditor) WithSink(s output.Sink) *Auditor {
	if s != nil {
		a.sink = s
	}
	return a
}

// WithReporter sets the progress reporter.
func (a *Auditor) WithReporter(r progress.Reporter) *Auditor {
	if r != nil {
		a.reporter = r
	}
	return a
}

// run holds the state of a single pass.
type run struct {
	a          *Auditor
	classifier *classify.Classifier
	sink       output.Sink
	agg        *stats.Aggregator
	cancel     context.CancelFunc

	mu      sync.Mutex
	errs    []CandidateError
	sinkErr error
}

// Run classifies every candidate below root. Per-file failures end up in
// Result.Errors; an error is returned only when root cannot be walked, the
// context is cancelled or the sink fails.
func (a *Auditor) Run(ctx context.Context, root string) (*Result, error) {
	root = filepath.Clean(root)

	info, err := a.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", scanner.ErrRootNotDir, root)
	}

	filter, err := scanner.NewFilter(a.cfg.Filter, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	digests := output.NewDigestSink()
	r := &run{
		a: a,
		classifier: classify.New(classify.Config{
			ChunkSize: a.cfg.ChunkSize,
			Encodings: a.cfg.Encodings,
		}, a.fs, a.log),
		sink: output.MultiSink{a.sink, digests},
		agg: stats.NewAggregator(stats.Config{
			ProgressEvery: a.cfg.ProgressEvery,
		}, a.reporter, a.log),
		cancel: cancel,
	}

	walker := scanner.NewWalker(a.fs, filter, a.log)
	walker.OnSkip(func(c scanner.Candidate, _ scanner.Reason) {
		r.agg.Observe(stats.Event{Type: stats.EventSkipped, Path: c.Path, Size: c.Size})
	})

	a.log.WithFields(logger.Fields{
		"root":      root,
		"workers":   a.cfg.Workers,
		"chunkSize": a.cfg.ChunkSize,
	}).Info("Starting audit")

	if a.cfg.Workers > 1 {
		err = r.concurrent(ctx, walker, root)
	} else {
		err = walker.Walk(ctx, root, func(c scanner.Candidate) {
			r.finish(c, r.classify(c))
		}, r.metadataError)
	}

	if err != nil {
		partial := r.agg.Snapshot()
		a.log.WithFields(logger.Fields{
			"files": partial.Files,
			"error": err,
		}).Warn("Audit interrupted")
	}

	final := r.agg.Close()

	r.mu.Lock()
	sinkErr := r.sinkErr
	r.mu.Unlock()

	if sinkErr != nil {
		return nil, fmt.Errorf("failed to record output: %w", sinkErr)
	}
	if err != nil {
		return nil, fmt.Errorf("audit of %s aborted: %w", root, err)
	}

	return &Result{
		Root:    root,
		Stats:   final,
		Errors:  r.errs,
		Digests: digests.Digests(),
	}, nil
}

func (r *run) concurrent(ctx context.Context, walker *scanner.Walker, root string) error {
	pool, err := worker.NewPool(worker.Config{
		Workers:   r.a.cfg.Workers,
		RateLimit: r.a.cfg.RateLimit,
		QueueSize: r.a.cfg.QueueSize,
		OnResult: func(res worker.Result, err error) {
			if err != nil {
				if !worker.IsCancelled(err) {
					r.a.log.WithFields(logger.Fields{"error": err}).Error("Classification task failed")
				}
				return
			}
			done := res.Data.(classified)
			r.finish(done.candidate, done.result)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	id := 0
	walkErr := walker.Walk(ctx, root, func(c scanner.Candidate) {
		id++
		task := worker.Task{
			ID: id,
			Execute: func(context.Context) (worker.Result, error) {
				return worker.Result{Data: classified{c, r.classify(c)}}, nil
			},
		}
		if err := pool.Submit(task); err != nil {
			r.a.log.WithFields(logger.Fields{
				"path":  c.Path,
				"error": err,
			}).Debug("Candidate not submitted")
		}
	}, r.metadataError)

	if walkErr != nil {
		if err := pool.Stop(); err != nil {
			r.a.log.WithFields(logger.Fields{"error": err}).Warn("Worker pool did not stop cleanly")
		}
		return walkErr
	}

	err = pool.Wait()
	r.a.log.WithFields(logger.Fields{
		"pool": pool.GetStats().String(),
	}).Debug("Worker pool drained")
	if err != nil && !worker.IsCancelled(err) {
		return err
	}
	return ctx.Err()
}

type classified struct {
	candidate scanner.Candidate
	result    classify.Classification
}

// classify records the candidate in the all list, then classifies it.
func (r *run) classify(c scanner.Candidate) classify.Classification {
	r.record(output.CategoryAll, c.Path)
	return r.classifier.Classify(c)
}

func (r *run) finish(c scanner.Candidate, result classify.Classification) {
	if result.Kind == classify.Error {
		r.addError(c.Path, result.Err)
	}
	if category, ok := output.CategoryFor(result); ok {
		r.record(category, c.Path)
	}

	r.agg.Observe(stats.Event{
		Type:   stats.EventClassified,
		Path:   c.Path,
		Size:   c.Size,
		Result: result,
	})
}

func (r *run) metadataError(err error) {
	var path string
	var me *scanner.MetadataError
	if errors.As(err, &me) {
		path = me.Path
	}
	r.addError(path, err)
	r.agg.Observe(stats.Event{Type: stats.EventMetadataError, Path: path})
}

func (r *run) addError(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, CandidateError{Path: path, Err: err})
}

func (r *run) record(category output.Category, path string) {
	if err := r.sink.Record(category, path); err != nil {
		r.mu.Lock()
		first := r.sinkErr == nil
		if first {
			r.sinkErr = err
		}
		r.mu.Unlock()

		if first {
			r.a.log.WithFields(logger.Fields{
				"category": string(category),
				"path":     path,
				"error":    err,
			}).Error("Failed to record path, stopping")
			r.cancel()
		}
	}
}
