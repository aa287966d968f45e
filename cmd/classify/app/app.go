/*
Package app provides the application container for the classify CLI. It
builds the components for one command from the loaded configuration, runs
it and handles graceful shutdown.

The container wires:
- the audit core (traversal, classification, aggregation)
- the list sink in the output directory, or an in-memory sink for dry runs
- progress reporting on stderr
- summary formatting on stdout or in a summary file

Usage:

	a := app.New(cfg, log)
	defer a.Shutdown()
	if err := a.Scan("/opt/spack/store"); err != nil {
	    log.Fatal(err)
	}
*/
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/haampie/classify-text-experiment/internal/config"
	"github.com/haampie/classify-text-experiment/pkg/audit"
	"github.com/haampie/classify-text-experiment/pkg/filecmd"
	"github.com/haampie/classify-text-experiment/pkg/logger"
	"github.com/haampie/classify-text-experiment/pkg/output"
	"github.com/haampie/classify-text-experiment/pkg/progress"
	"github.com/haampie/classify-text-experiment/pkg/scanner"
)

// App represents the main application container
type App struct {
	config *config.Config
	log    logger.Logger
	fs     afero.Fs

	stdout io.Writer
	stderr io.Writer

	// command replaces the file(1) invocation when set
	command filecmd.CommandFunc

	ctx    context.Context
	cancel context.CancelFunc
	exit   func(int)

	signals chan os.Signal
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// New creates a new application instance and installs signal handlers.
func New(cfg *config.Config, log logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		config:  cfg,
		log:     log,
		fs:      afero.NewOsFs(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		ctx:     ctx,
		cancel:  cancel,
		exit:    os.Exit,
		signals: make(chan os.Signal, 2),
		done:    make(chan struct{}),
	}

	a.setupSignalHandling()

	a.log.WithFields(logger.Fields{
		"workers": cfg.Workers,
		"verbose": cfg.Verbose,
	}).Debug("Application initialized")

	return a
}

// WithFs replaces the OS filesystem.
func (a *App) WithFs(fs afero.Fs) *App {
	a.fs = fs
	return a
}

// WithOutput redirects the summary and the progress lines.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	if stdout != nil {
		a.stdout = stdout
	}
	if stderr != nil {
		a.stderr = stderr
	}
	return a
}

// WithCommand replaces the file(1) invocation used by Mime.
func (a *App) WithCommand(fn filecmd.CommandFunc) *App {
	a.command = fn
	return a
}

// Scan classifies every file below root, writes the path lists and prints
// the summary.
func (a *App) Scan(root string) (err error) {
	defer a.recoverPanic(&err)

	cfg := a.config
	a.log.WithFields(logger.Fields{
		"root":      root,
		"outputDir": cfg.OutputDir,
		"dryRun":    cfg.DryRun,
		"format":    cfg.Format,
	}).Info("Starting scan operation")

	encodings, err := cfg.ProbeOrder()
	if err != nil {
		return fmt.Errorf("scan operation failed: %w", err)
	}

	sink, outputDir, err := a.createSink()
	if err != nil {
		return err
	}

	result, runErr := audit.New(audit.Config{
		Workers:       cfg.Workers,
		RateLimit:     cfg.RateLimit,
		ChunkSize:     cfg.ChunkSize,
		Encodings:     encodings,
		ProgressEvery: cfg.ProgressEvery,
		Filter: scanner.FilterConfig{
			Excludes:       cfg.Excludes,
			IgnorePatterns: cfg.IgnorePatterns,
		},
	}, a.fs, a.log).
		WithSink(sink).
		WithReporter(a.createReporter()).
		Run(a.ctx, root)

	if closeErr := sink.Close(); closeErr != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close path lists: %w", closeErr)
	}
	if runErr != nil {
		return fmt.Errorf("scan operation failed: %w", runErr)
	}

	summary := output.NewSummary(result.Root, result.Stats, result.Digests)
	summary.OutputDir = outputDir

	toFile := cfg.SummaryFile != ""
	formatted, err := output.NewFormatter(output.Config{
		Format:     output.Format(cfg.Format),
		WithColors: !cfg.NoColor && !toFile,
	}, a.log).Format(summary)
	if err != nil {
		return fmt.Errorf("summary formatting failed: %w", err)
	}

	if err := a.writeOutput(formatted, cfg.SummaryFile); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"files":    result.Stats.Files,
		"errors":   len(result.Errors),
		"duration": result.Stats.Elapsed(),
		"outputTo": outputDir,
	}).Info("Scan operation completed")

	return nil
}

// Mime runs the file(1) utility over the paths listed in listFile and prints
// those with a text MIME type.
func (a *App) Mime(listFile string) (err error) {
	defer a.recoverPanic(&err)

	f, err := a.fs.Open(listFile)
	if err != nil {
		return fmt.Errorf("failed to open path list: %w", err)
	}
	paths, err := filecmd.ReadList(f)
	f.Close()
	if err != nil {
		return err
	}

	runner := filecmd.New(filecmd.Config{BatchSize: a.config.BatchSize}, a.log).
		WithCommand(a.command).
		WithReporter(a.createReporter())

	result, err := runner.Run(a.ctx, paths, func(path string) {
		fmt.Fprintln(a.stdout, path)
	})
	if err != nil {
		return fmt.Errorf("mime operation failed: %w", err)
	}

	for _, pe := range result.Errors {
		fmt.Fprintln(a.stderr, pe.Error())
	}

	a.log.WithFields(logger.Fields{
		"files":  result.Total,
		"text":   result.Text,
		"errors": len(result.Errors),
	}).Info("Mime operation completed")

	return nil
}

// Shutdown cancels outstanding work and releases the signal handlers.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	a.cancel()
	a.stopSignalHandling()
	close(a.done)

	a.log.Debug("Shutdown complete")

	// Syncing a terminal stderr fails on some platforms
	_ = a.log.Sync()
	return nil
}

func (a *App) createSink() (output.Sink, string, error) {
	if a.config.DryRun {
		a.log.Debug("Dry run, keeping path lists in memory")
		return output.NewMemorySink(), "", nil
	}

	dir := a.config.OutputDir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	sink, err := output.NewListSink(a.fs, dir, a.log)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create path lists: %w", err)
	}
	return sink, sink.Dir(), nil
}

func (a *App) createReporter() progress.Reporter {
	if a.config.NoProgress {
		return progress.Discard
	}
	return progress.New(progress.Config{
		Style:   progress.StyleAuto,
		Writer:  a.stderr,
		NoColor: a.config.NoColor,
	}, a.log)
}

// writeOutput writes the formatted summary to stdout or to outputPath
func (a *App) writeOutput(content string, outputPath string) error {
	a.log.WithFields(logger.Fields{
		"path": outputPath,
	}).Debug("Writing output")

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if outputPath == "" {
		_, err := fmt.Fprint(a.stdout, content)
		if err != nil {
			a.log.WithFields(logger.Fields{
				"error": err,
			}).Error("Failed to write to stdout")
		}
		return err
	}

	if err := afero.WriteFile(a.fs, outputPath, []byte(content), 0644); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
			"path":  outputPath,
		}).Error("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"path": outputPath,
	}).Info("Output written successfully")
	return nil
}

func (a *App) recoverPanic(err *error) {
	if r := recover(); r != nil {
		a.log.WithFields(logger.Fields{
			"panic": r,
			"stack": string(debug.Stack()),
		}).Error("Recovered from panic")
		*err = fmt.Errorf("internal error: %v", r)
	}
}
