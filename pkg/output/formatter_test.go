package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/haampie/classify-text-experiment/pkg/classify"
	"github.com/haampie/classify-text-experiment/pkg/logger"
	"github.com/haampie/classify-text-experiment/pkg/stats"
)

// mockLogger implements logger.Logger interface for testing
type mockLogger struct {
	logs []string
}

func (m *mockLogger) Info(msg string)                               { m.logs = append(m.logs, "INFO: "+msg) }
func (m *mockLogger) Debug(msg string)                              { m.logs = append(m.logs, "DEBUG: "+msg) }
func (m *mockLogger) Error(msg string)                              { m.logs = append(m.logs, "ERROR: "+msg) }
func (m *mockLogger) Warn(msg string)                               { m.logs = append(m.logs, "WARN: "+msg) }
func (m *mockLogger) Trace(msg string)                              { m.logs = append(m.logs, "TRACE: "+msg) }
func (m *mockLogger) WithFields(fields logger.Fields) logger.Logger { return m }
func (m *mockLogger) Sync() error                                   { return nil }

func createTestSummary() *Summary {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSummary("/store", stats.RunStats{
		Files:        3,
		Binary:       1,
		Unclassified: 1,
		Errors:       2,
		Skipped:      4,
		PerEncoding:  map[classify.Encoding]int64{classify.UTF8: 1},
		BytesRead:    26,
		BytesTotal:   104,
		StartTime:    start,
		EndTime:      start.Add(1500 * time.Millisecond),
	}, map[Category]string{
		CategoryAll:  "00000000000000aa",
		CategoryUTF8: "00000000000000bb",
	})
	s.OutputDir = "/tmp/out"
	return s
}

func TestNewSummary(t *testing.T) {
	s := createTestSummary()

	assert.Equal(t, "/store", s.Root)
	assert.Equal(t, map[string]int64{"utf-8": 1, "utf-16": 0, "iso-8859-1": 0}, s.Encodings)
	assert.InDelta(t, 25.0, s.Percent, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, s.Duration)
	assert.Equal(t, "00000000000000aa", s.Digests["all"])
}

func TestFormatter(t *testing.T) {
	tests := []struct {
		name       string
		format     Format
		withColors bool
		verify     func(*testing.T, string, *mockLogger)
	}{
		{
			name:   "text format basic",
			format: FormatText,
			verify: func(t *testing.T, output string, log *mockLogger) {
				assert.Contains(t, output, "Classification summary for /store")
				assert.Contains(t, output, "  Files:         3")
				assert.Contains(t, output, "  utf-8:         1")
				assert.Contains(t, output, "  iso-8859-1:    0")
				assert.Contains(t, output, "  Errors:        2")
				assert.Contains(t, output, "26 B / 104 B (25.00%)")
				assert.Contains(t, output, "1.5s")
				assert.Contains(t, output, "/tmp/out")
				assert.NotContains(t, output, "\x1b[")
			},
		},
		{
			name:       "text format with colors",
			format:     FormatText,
			withColors: true,
			verify: func(t *testing.T, output string, log *mockLogger) {
				assert.Contains(t, output, "\x1b[1m")  // Bold header
				assert.Contains(t, output, "\x1b[31m") // Red errors
				assert.Contains(t, output, "\x1b[32m") // Green encodings
				assert.Contains(t, output, "\x1b[0m")  // Reset
			},
		},
		{
			name:   "text format with digests",
			format: FormatText,
			verify: func(t *testing.T, output string, log *mockLogger) {
				assert.Contains(t, output, "Digests:")
				assert.Contains(t, output, "all          00000000000000aa")
				assert.Less(t, strings.Index(output, "  all "), strings.Index(output, "  utf-8  "))
				assert.Contains(t, log.logs, "DEBUG: Adding digests to output")
			},
		},
		{
			name:   "json format",
			format: FormatJSON,
			verify: func(t *testing.T, output string, log *mockLogger) {
				var decoded map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &decoded))
				assert.Equal(t, "/store", decoded["root"])
				assert.EqualValues(t, 3, decoded["files"])
				assert.Contains(t, output, `"utf-16": 0`)
				assert.Contains(t, log.logs, "DEBUG: Formatting JSON output")
			},
		},
		{
			name:   "yaml format",
			format: FormatYAML,
			verify: func(t *testing.T, output string, log *mockLogger) {
				var decoded map[string]any
				require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
				assert.Equal(t, "/store", decoded["root"])
				assert.Contains(t, output, "bytesTotal: 104")
				assert.Contains(t, output, "iso-8859-1: 0")
				assert.Contains(t, log.logs, "DEBUG: Formatting YAML output")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &mockLogger{}

			formatter := NewFormatter(Config{
				Format:     tt.format,
				WithColors: tt.withColors,
			}, log)

			output, err := formatter.Format(createTestSummary())

			require.NoError(t, err)
			require.NotEmpty(t, output)

			tt.verify(t, output, log)
		})
	}
}

func TestFormatterEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		summary   *Summary
		format    Format
		wantErr   bool
		errString string
	}{
		{
			name:      "nil summary",
			format:    FormatText,
			wantErr:   true,
			errString: "nil summary",
		},
		{
			name:      "invalid format",
			summary:   createTestSummary(),
			format:    "invalid",
			wantErr:   true,
			errString: "unsupported format",
		},
		{
			name:    "empty run",
			summary: NewSummary("/empty", stats.RunStats{}, nil),
			format:  FormatText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &mockLogger{}
			formatter := NewFormatter(Config{Format: tt.format}, log)

			output, err := formatter.Format(tt.summary)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)

				hasError := false
				for _, logMsg := range log.logs {
					if strings.HasPrefix(logMsg, "ERROR: ") {
						hasError = true
						break
					}
				}
				assert.True(t, hasError, "Expected error log message not found")
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, output)
				assert.NotContains(t, output, "Digests:")
			}
		})
	}
}
