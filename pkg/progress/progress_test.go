package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

type mockLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *mockLogger) add(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, s)
}

func (m *mockLogger) Info(msg string)                               { m.add("INFO: " + msg) }
func (m *mockLogger) Debug(msg string)                              { m.add("DEBUG: " + msg) }
func (m *mockLogger) Error(msg string)                              { m.add("ERROR: " + msg) }
func (m *mockLogger) Warn(msg string)                               { m.add("WARN: " + msg) }
func (m *mockLogger) Trace(msg string)                              { m.add("TRACE: " + msg) }
func (m *mockLogger) WithFields(fields logger.Fields) logger.Logger { return m }
func (m *mockLogger) Sync() error                                   { return nil }

func TestReporter(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		verify func(*testing.T, string)
	}{
		{
			name:   "lines style",
			config: Config{Style: StyleLines, NoColor: true},
			verify: func(t *testing.T, out string) {
				assert.Equal(t, "first\nsecond\nfinal\n", out)
			},
		},
		{
			name:   "auto on a buffer falls back to lines",
			config: Config{Style: StyleAuto},
			verify: func(t *testing.T, out string) {
				assert.Equal(t, "first\nsecond\nfinal\n", out)
			},
		},
		{
			name:   "inline style",
			config: Config{Style: StyleInline, NoColor: true},
			verify: func(t *testing.T, out string) {
				assert.Equal(t, 3, strings.Count(out, "\r\033[K"), "each report clears the line")
				assert.Equal(t, 1, strings.Count(out, "\n"), "only the final line ends with a newline")
				assert.Contains(t, out, spinnerFrames[1]+" first")
				assert.Contains(t, out, spinnerFrames[2]+" second")
				assert.True(t, strings.HasSuffix(out, "✓ final\n"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.config.Writer = &buf
			log := &mockLogger{}

			r := New(tt.config, log)
			r.Report("first")
			r.Report("second")
			r.Done("final")

			tt.verify(t, buf.String())
			assert.Contains(t, log.logs, "DEBUG: Progress complete")
		})
	}
}

func TestReporterIgnoresAfterDone(t *testing.T) {
	var buf bytes.Buffer
	r := New(Config{Style: StyleLines, Writer: &buf}, nil)

	r.Done("final")
	r.Report("late")
	r.Done("again")

	assert.Equal(t, "final\n", buf.String())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Report("x")
		Discard.Done("y")
	})
}
