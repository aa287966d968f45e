/*
Package commands implements the CLI command structure for classify.
It provides the root command, which scans when given a directory, and the
scan, mime and version subcommands, with flag handling layered over the
loaded configuration.
*/
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/haampie/classify-text-experiment/internal/config"
	"github.com/haampie/classify-text-experiment/pkg/logger"
)

// Options holds command-line options that apply to all commands
type Options struct {
	Config     *config.Config
	ConfigPath string
	Verbose    int
	NoProgress bool
	NoColor    bool

	log logger.Logger
}

// NewRootCommand creates the root command for the application
func NewRootCommand() *cobra.Command {
	opts := &Options{}
	so := &scanOptions{Options: opts}

	rootCmd := &cobra.Command{
		Use:   "classify [command] [flags] <root>",
		Short: "Classify files in a tree by text encoding",
		Long: `classify walks a directory tree and sorts every regular file into binary,
UTF-8, UTF-16, ISO-8859-1 or unclassified, reading each file in bounded
chunks. Paths are written to all.txt and one list per encoding.

Without a subcommand, classify scans the given root directory.`,
		Args: cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeCommand(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], so)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags that apply to all commands
	rootCmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v",
		"verbose output (can be used multiple times)")
	rootCmd.PersistentFlags().BoolVar(&opts.NoProgress, "no-progress", false,
		"disable progress reporting")
	rootCmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"YAML config file")

	addScanFlags(rootCmd, so)

	rootCmd.AddCommand(
		newScanCommand(opts),
		newMimeCommand(opts),
		newVersionCommand(opts),
	)

	return rootCmd
}

// initializeCommand loads the configuration, applies the global flags and
// creates the logger
func initializeCommand(cmd *cobra.Command, opts *Options) error {
	cfg, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = opts.Verbose
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = opts.NoProgress
	}
	if flags.Changed("no-color") {
		cfg.NoColor = opts.NoColor
	}

	opts.log = logger.NewLogger(logger.Config{
		Verbosity: cfg.Verbose,
		Output:    cmd.ErrOrStderr(),
		Encoding:  logEncoding(cmd.ErrOrStderr()),
	})

	opts.log.WithFields(logger.Fields{
		"verbosity": cfg.Verbose,
		"command":   cmd.Name(),
		"config":    opts.ConfigPath,
	}).Debug("Initializing command")

	opts.Config = &cfg
	return nil
}

// logEncoding picks the console encoder for an interactive stderr and JSON
// otherwise.
func logEncoding(w io.Writer) logger.Encoding {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return logger.EncodingConsole
	}
	return logger.EncodingJSON
}
