package output

import (
	"time"

	"github.com/haampie/classify-text-experiment/pkg/classify"
	"github.com/haampie/classify-text-experiment/pkg/stats"
)

// Summary is the end-of-run report rendered by a Formatter.
type Summary struct {
	Root         string            `json:"root" yaml:"root"`
	OutputDir    string            `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	Files        int64             `json:"files" yaml:"files"`
	Binary       int64             `json:"binary" yaml:"binary"`
	Encodings    map[string]int64  `json:"encodings" yaml:"encodings"`
	Unclassified int64             `json:"unclassified" yaml:"unclassified"`
	Errors       int64             `json:"errors" yaml:"errors"`
	Skipped      int64             `json:"skipped" yaml:"skipped"`
	BytesRead    int64             `json:"bytesRead" yaml:"bytesRead"`
	BytesTotal   int64             `json:"bytesTotal" yaml:"bytesTotal"`
	Percent      float64           `json:"percent" yaml:"percent"`
	Duration     time.Duration     `json:"duration" yaml:"duration"`
	Digests      map[string]string `json:"digests,omitempty" yaml:"digests,omitempty"`
	Generated    time.Time         `json:"generated" yaml:"generated"`
}

// NewSummary builds a Summary from the final counters and the category
// digests, which may be nil.
func NewSummary(root string, s stats.RunStats, digests map[Category]string) *Summary {
	sum := &Summary{
		Root:         root,
		Files:        s.Files,
		Binary:       s.Binary,
		Encodings:    make(map[string]int64, len(classify.DefaultEncodings)),
		Unclassified: s.Unclassified,
		Errors:       s.Errors,
		Skipped:      s.Skipped,
		BytesRead:    s.BytesRead,
		BytesTotal:   s.BytesTotal,
		Percent:      s.Percent(),
		Duration:     s.Elapsed(),
		Generated:    time.Now(),
	}

	for _, enc := range classify.DefaultEncodings {
		sum.Encodings[enc.String()] = s.Count(enc)
	}

	if len(digests) > 0 {
		sum.Digests = make(map[string]string, len(digests))
		for c, d := range digests {
			sum.Digests[string(c)] = d
		}
	}

	return sum
}
