package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/haampie/classify-text-experiment/pkg/classify"
	"github.com/haampie/classify-text-experiment/pkg/util"
)

func (f *formatter) formatText(s *Summary) (string, error) {
	f.log.Debug("Formatting text output")

	paint := func(text string, attrs ...color.Attribute) string {
		if !f.config.WithColors {
			return text
		}
		c := color.New(attrs...)
		c.EnableColor()
		return c.Sprint(text)
	}

	var builder strings.Builder
	builder.WriteString(paint("Classification summary", color.Bold))
	builder.WriteString(fmt.Sprintf(" for %s\n", s.Root))

	row := func(label string, value any) {
		builder.WriteString(fmt.Sprintf("  %-14s %v\n", label+":", value))
	}

	row("Files", s.Files)
	row("Binary", s.Binary)
	for _, enc := range classify.DefaultEncodings {
		n := s.Encodings[enc.String()]
		value := fmt.Sprint(n)
		if n > 0 {
			value = paint(value, color.FgGreen)
		}
		row(enc.String(), value)
	}
	row("Unclassified", s.Unclassified)

	errCount := fmt.Sprint(s.Errors)
	if s.Errors > 0 {
		errCount = paint(errCount, color.FgRed)
	}
	row("Errors", errCount)
	row("Skipped", s.Skipped)
	row("Bytes read", fmt.Sprintf("%s / %s (%.2f%%)",
		util.FormatSize(s.BytesRead), util.FormatSize(s.BytesTotal), s.Percent))
	row("Duration", util.FormatDuration(s.Duration))

	if s.OutputDir != "" {
		row("Output", s.OutputDir)
	}

	if len(s.Digests) > 0 {
		f.log.Debug("Adding digests to output")
		builder.WriteString("\nDigests:\n")
		for _, c := range Categories {
			if d, ok := s.Digests[string(c)]; ok {
				builder.WriteString(fmt.Sprintf("  %-12s %s\n", c, paint(d, color.FgCyan)))
			}
		}
	}

	return builder.String(), nil
}
