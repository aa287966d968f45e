/*
Package output records classified paths and renders the end-of-run summary.

Sinks receive (category, path) pairs. ListSink persists them as one
newline-delimited file per category; MemorySink and DigestSink keep them in
memory. Formatters render a Summary as text, JSON or YAML.

Basic usage:

	formatter := output.NewFormatter(output.Config{
		Format:     output.FormatText,
		WithColors: true,
	}, log)

	result, err := formatter.Format(summary)
*/
package output

import (
	"fmt"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

// Format represents the output format type
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// Config holds formatter configuration
type Config struct {
	Format     Format
	WithColors bool
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(*Summary) (string, error)
}

// formatter implements the Formatter interface
type formatter struct {
	config Config
	log    logger.Logger
}

// NewFormatter creates a new formatter instance
func NewFormatter(config Config, log logger.Logger) Formatter {
	if log == nil {
		log = logger.Nop()
	}
	return &formatter{
		config: config,
		log:    log,
	}
}

// Format renders the summary according to the configured format
func (f *formatter) Format(summary *Summary) (string, error) {
	if summary == nil {
		msg := "nil summary provided for formatting"
		f.log.Error(msg)
		return "", fmt.Errorf("%s", msg)
	}

	f.log.WithFields(logger.Fields{
		"format":     f.config.Format,
		"withColors": f.config.WithColors,
	}).Debug("Starting format operation")

	switch f.config.Format {
	case FormatText:
		return f.formatText(summary)
	case FormatJSON:
		return f.formatJSON(summary)
	case FormatYAML:
		return f.formatYAML(summary)
	default:
		msg := fmt.Sprintf("unsupported format: %s", f.config.Format)
		f.log.Error(msg)
		return "", fmt.Errorf("%s", msg)
	}
}
