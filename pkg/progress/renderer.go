package progress

import (
	"strings"

	"github.com/fatih/color"
)

type renderer interface {
	render(line string, final bool) string
}

// linesRenderer prints each report as a plain line. Safe for pipes and log
// capture.
type linesRenderer struct{}

func (linesRenderer) render(line string, final bool) string {
	return line + "\n"
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// inlineRenderer overwrites the current terminal line with a spinner prefix.
type inlineRenderer struct {
	noColor bool
	frame   int
}

func (r *inlineRenderer) render(line string, final bool) string {
	var output strings.Builder
	output.WriteString("\r\033[K")

	if final {
		mark := "✓"
		if !r.noColor {
			mark = color.New(color.FgGreen).Sprint(mark)
		}
		output.WriteString(mark + " " + line + "\n")
		return output.String()
	}

	r.frame = (r.frame + 1) % len(spinnerFrames)
	spinner := spinnerFrames[r.frame]
	if !r.noColor {
		spinner = color.New(color.FgCyan).Sprint(spinner)
	}
	output.WriteString(spinner + " " + line)

	return output.String()
}
