package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/haampie/classify-text-experiment/cmd/classify/app"
	"github.com/haampie/classify-text-experiment/pkg/logger"
)

type scanOptions struct {
	*Options
	outputDir     string
	workers       int
	chunkSize     int
	progressEvery int64
	encodings     []string
	exclude       []string
	ignore        []string
	format        string
	summaryFile   string
	rateLimit     float64
	dryRun        bool
}

func newScanCommand(opts *Options) *cobra.Command {
	so := &scanOptions{Options: opts}

	cmd := &cobra.Command{
		Use:   "scan [flags] <root>",
		Short: "Classify every regular file below root",
		Long: `Walk root without following symlinks and classify every non-empty regular
file. Known executables (ELF, Mach-O, 0xcafebabe) are binary; other files are
tried as UTF-8, then UTF-16, then ISO-8859-1. Entries below /.spack/ and
/.spack-db/ are skipped by default.

Path lists are written to the output directory as all.txt, utf-8.txt,
utf-16.txt and iso-8859-1.txt. Progress goes to stderr, the summary to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], so)
		},
	}

	addScanFlags(cmd, so)
	return cmd
}

func addScanFlags(cmd *cobra.Command, so *scanOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&so.outputDir, "output-dir", "o", ".",
		"directory receiving the path lists")
	flags.IntVarP(&so.workers, "workers", "w", 1,
		"number of concurrent classifications (0 for CPU count, 1 keeps list order)")
	flags.IntVarP(&so.chunkSize, "chunk-size", "b", 4096,
		"read size in bytes (at least 64)")
	flags.Int64VarP(&so.progressEvery, "progress-every", "n", 10000,
		"print a progress line every N files (0 for the final line only)")
	flags.StringSliceVar(&so.encodings, "encodings", nil,
		"encodings to try, in order (default utf-8,utf-16,iso-8859-1)")
	flags.StringSliceVarP(&so.exclude, "exclude", "e", nil,
		"additional path substring to skip (can be specified multiple times)")
	flags.StringSliceVarP(&so.ignore, "ignore", "i", nil,
		"glob pattern to skip (can be specified multiple times)")
	flags.StringVarP(&so.format, "format", "f", "text",
		"summary format: text|json|yaml")
	flags.StringVar(&so.summaryFile, "summary-file", "",
		"write the summary to a file instead of stdout")
	flags.Float64VarP(&so.rateLimit, "rate-limit", "r", 0,
		"maximum classifications started per second (0 for unlimited)")
	flags.BoolVar(&so.dryRun, "dry-run", false,
		"classify without writing path lists")
}

// applyScanFlags overrides the loaded configuration with the flags the user
// set explicitly
func applyScanFlags(cmd *cobra.Command, so *scanOptions) error {
	cfg := so.Config
	flags := cmd.Flags()

	if flags.Changed("output-dir") {
		cfg.OutputDir = so.outputDir
	}
	if flags.Changed("workers") {
		cfg.Workers = so.workers
		if cfg.Workers == 0 {
			cfg.Workers = runtime.NumCPU()
		}
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = so.chunkSize
	}
	if flags.Changed("progress-every") {
		cfg.ProgressEvery = so.progressEvery
	}
	if flags.Changed("encodings") {
		cfg.Encodings = so.encodings
	}
	if flags.Changed("exclude") {
		cfg.Excludes = append(cfg.Excludes, so.exclude...)
	}
	if flags.Changed("ignore") {
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, so.ignore...)
	}
	if flags.Changed("format") {
		cfg.Format = so.format
	}
	if flags.Changed("summary-file") {
		cfg.SummaryFile = so.summaryFile
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = so.rateLimit
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = so.dryRun
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func runScan(cmd *cobra.Command, root string, so *scanOptions) error {
	if err := applyScanFlags(cmd, so); err != nil {
		return err
	}

	so.log.WithFields(logger.Fields{
		"root":   root,
		"config": so.Config.String(),
	}).Debug("Starting scan command")

	application := app.New(so.Config, so.log).
		WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	defer application.Shutdown()

	return application.Scan(root)
}
