package progress

import "io"

// Style represents the type of progress visualization
type Style string

const (
	// StyleAuto picks StyleInline on a terminal and StyleLines otherwise
	StyleAuto Style = "auto"

	// StyleLines writes every report on its own line
	StyleLines Style = "lines"

	// StyleInline redraws a single line in place
	StyleInline Style = "inline"
)

// Config holds the configuration for progress reporting
type Config struct {
	// Style defines how progress should be displayed
	Style Style

	// Writer receives the progress output. Defaults to os.Stdout.
	Writer io.Writer

	// NoColor disables colored output
	NoColor bool
}

// Reporter receives progress lines from the run aggregator. Implementations
// must be safe for use from a single goroutine at a time; the aggregator is
// the only caller during a run.
type Reporter interface {
	// Report shows an intermediate progress line
	Report(line string)

	// Done shows the final line and releases the display
	Done(line string)
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(string) {}
func (discard) Done(string)   {}
