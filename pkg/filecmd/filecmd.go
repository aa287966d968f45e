/*
Package filecmd classifies files with the external file(1) utility instead of
reading them directly. Paths are handed to "file --brief --mime-type" in
batches and those whose MIME top-level type is text are emitted.

Basic usage:

	r := filecmd.New(filecmd.Config{BatchSize: 1000}, log).
		WithReporter(reporter)

	result, err := r.Run(ctx, paths, func(path string) {
		fmt.Println(path)
	})
*/
package filecmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/haampie/classify-text-experiment/pkg/logger"
	"github.com/haampie/classify-text-experiment/pkg/progress"
)

const (
	// DefaultBatchSize is the number of paths passed to one invocation.
	DefaultBatchSize = 1000

	// DefaultCommand is the executable looked up in PATH.
	DefaultCommand = "file"
)

// CommandFunc runs the utility on a batch and returns one MIME type per
// line, in argument order.
type CommandFunc func(ctx context.Context, paths []string) ([]byte, error)

// Config configures a Runner.
type Config struct {
	BatchSize int
	Command   string
}

// PathError is a path that could not be classified because its batch failed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("error processing %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Result summarizes a run.
type Result struct {
	Total     int
	Processed int
	Text      int
	Errors    []*PathError
}

// Runner drives the utility over a path list.
type Runner struct {
	cfg      Config
	command  CommandFunc
	reporter progress.Reporter
	log      logger.Logger
}

// New creates a Runner that executes the real utility.
func New(cfg Config, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}

	r := &Runner{
		cfg:      cfg,
		reporter: progress.Discard,
		log:      log,
	}
	r.command = r.execute
	return r
}

// WithCommand replaces the process invocation.
func (r *Runner) WithCommand(fn CommandFunc) *Runner {
	if fn != nil {
		r.command = fn
	}
	return r
}

// WithReporter sets where batch progress goes.
func (r *Runner) WithReporter(rep progress.Reporter) *Runner {
	if rep != nil {
		r.reporter = rep
	}
	return r
}

// execute runs the configured utility. Stderr is captured for the error.
func (r *Runner) execute(ctx context.Context, paths []string) ([]byte, error) {
	args := append([]string{"--brief", "--mime-type", "--"}, paths...)
	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", r.cfg.Command, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", r.cfg.Command, err)
	}
	return out, nil
}

// Run classifies paths batch by batch and calls emit for every text file.
// A failed batch turns each of its paths into a PathError and the run
// continues; only context cancellation stops it early.
func (r *Runner) Run(ctx context.Context, paths []string, emit func(string)) (*Result, error) {
	if emit == nil {
		emit = func(string) {}
	}

	result := &Result{Total: len(paths)}

	r.log.WithFields(logger.Fields{
		"files":     len(paths),
		"batchSize": r.cfg.BatchSize,
		"command":   r.cfg.Command,
	}).Info("Starting file utility run")

	for start := 0; start < len(paths); start += r.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("file utility run cancelled: %w", err)
		}

		batch := paths[start:min(start+r.cfg.BatchSize, len(paths))]
		types, err := r.batch(ctx, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("file utility run cancelled: %w", ctxErr)
			}
			r.log.WithFields(logger.Fields{
				"first": batch[0],
				"size":  len(batch),
				"error": err,
			}).Warn("Batch failed")
			for _, p := range batch {
				result.Errors = append(result.Errors, &PathError{Path: p, Err: err})
			}
			continue
		}

		for i, p := range batch {
			if isText(types[i]) {
				result.Text++
				emit(p)
			}
		}

		result.Processed += len(batch)
		r.reporter.Report(fmt.Sprintf("Progress: %.2f%%", percent(result.Processed, result.Total)))
	}

	r.reporter.Done(fmt.Sprintf("Progress: %.2f%% (%d text, %d errors)",
		percent(result.Processed, result.Total), result.Text, len(result.Errors)))

	return result, nil
}

func (r *Runner) batch(ctx context.Context, batch []string) ([]string, error) {
	out, err := r.command(ctx, batch)
	if err != nil {
		return nil, err
	}

	types := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(types) != len(batch) {
		return nil, fmt.Errorf("expected %d mime types, got %d", len(batch), len(types))
	}
	return types, nil
}

func isText(mime string) bool {
	top, _, ok := strings.Cut(strings.TrimSpace(mime), "/")
	return ok && top == "text"
}

func percent(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}

// ReadList reads one path per line, trimming whitespace and skipping blank
// lines.
func ReadList(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if p := strings.TrimSpace(sc.Text()); p != "" {
			paths = append(paths, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path list: %w", err)
	}
	return paths, nil
}
