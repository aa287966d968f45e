package config

import (
	"github.com/haampie/classify-text-experiment/pkg/classify"
	"github.com/haampie/classify-text-experiment/pkg/filecmd"
	"github.com/haampie/classify-text-experiment/pkg/stats"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CLASSIFY"

// Constants for configuration limits and defaults
const (
	// MinChunkSize is the smallest read size the prober accepts
	MinChunkSize = classify.MinChunkSize

	// DefaultChunkSize is the default read size in bytes
	DefaultChunkSize = classify.DefaultChunkSize

	// DefaultWorkers keeps the deterministic sequential mode
	DefaultWorkers = 1

	// MaxWorkerMultiplier is the maximum multiple of CPU cores for worker count
	MaxWorkerMultiplier = 4

	// DefaultProgressEvery is the progress cadence in files
	DefaultProgressEvery = stats.DefaultProgressEvery

	// DefaultOutputDir receives the path lists
	DefaultOutputDir = "."

	// DefaultFormat is the summary format
	DefaultFormat = "text"

	// DefaultBatchSize is the number of paths per file(1) invocation
	DefaultBatchSize = filecmd.DefaultBatchSize
)

// DefaultEncodings is the trial order by name
var DefaultEncodings = []string{"utf-8", "utf-16", "iso-8859-1"}
