package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

type reporter struct {
	config   Config
	log      logger.Logger
	writer   io.Writer
	renderer renderer

	mu      sync.Mutex
	reports int64
	done    bool
}

// New creates a Reporter writing to config.Writer.
func New(config Config, log logger.Logger) Reporter {
	if log == nil {
		log = logger.Nop()
	}
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.Style == "" {
		config.Style = StyleAuto
	}

	r := &reporter{
		config: config,
		log:    log,
		writer: config.Writer,
	}
	r.renderer = r.createRenderer()

	r.log.WithFields(logger.Fields{
		"style":    r.config.Style,
		"terminal": r.isTerminal(),
		"noColor":  r.config.NoColor,
	}).Debug("Created progress reporter")

	return r
}

func (r *reporter) Report(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}
	r.reports++
	r.log.Trace("Progress: " + line)
	fmt.Fprint(r.writer, r.renderer.render(line, false))
}

func (r *reporter) Done(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}
	r.done = true

	r.log.WithFields(logger.Fields{
		"reports": r.reports,
	}).Debug("Progress complete")
	fmt.Fprint(r.writer, r.renderer.render(line, true))
}

func (r *reporter) isTerminal() bool {
	if f, ok := r.writer.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func (r *reporter) createRenderer() renderer {
	style := r.config.Style
	if style == StyleAuto {
		style = StyleLines
		if r.isTerminal() {
			style = StyleInline
		}
	}

	switch style {
	case StyleInline:
		return &inlineRenderer{noColor: r.config.NoColor}
	default:
		return linesRenderer{}
	}
}
