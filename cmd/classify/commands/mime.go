package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haampie/classify-text-experiment/cmd/classify/app"
)

func newMimeCommand(opts *Options) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "mime [flags] <list-file>",
		Short: "Filter a path list through the file utility",
		Long: `Read one path per line from list-file, run "file --brief --mime-type" on
them in batches and print the paths whose MIME type is text/*. Paths of a
batch that fails are reported on stderr and the run continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("batch-size") {
				opts.Config.BatchSize = batchSize
			}
			if err := opts.Config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			application := app.New(opts.Config, opts.log).
				WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
			defer application.Shutdown()

			return application.Mime(args[0])
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 1000,
		"number of paths per file invocation")

	return cmd
}
