package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/haampie/classify-text-experiment/pkg/classify"
	"github.com/haampie/classify-text-experiment/pkg/scanner"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Workers is the number of concurrent classifications (1 is sequential)
	Workers int

	// ChunkSize is the size of each read from a candidate
	ChunkSize int

	// ProgressEvery emits a progress line every N files (0 disables)
	ProgressEvery int64

	// Encodings are tried in order on every non-binary file
	Encodings []string

	// Excludes are path substrings whose entries are never classified
	Excludes []string

	// IgnorePatterns is a list of glob patterns to ignore during traversal
	IgnorePatterns []string

	// OutputDir receives all.txt and the per-encoding lists
	OutputDir string

	// Format specifies the summary format (text, json, or yaml)
	Format string

	// SummaryFile is the path to write the summary (empty for stdout)
	SummaryFile string

	// RateLimit is the maximum number of classifications started per second (0 for unlimited)
	RateLimit float64

	// DryRun keeps the path lists in memory
	DryRun bool

	// BatchSize is the number of paths per file(1) invocation
	BatchSize int

	// NoProgress disables progress reporting
	NoProgress bool

	// NoColor disables colored output
	NoColor bool

	// Verbose sets the verbosity level
	Verbose int
}

// validFormats contains the list of supported summary formats
var validFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads an optional YAML config file, then environment variables,
// and validates the result. Environment variables win over the file.
func LoadFile(path string) (Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("progress_every", DefaultProgressEvery)
	v.SetDefault("encodings", DefaultEncodings)
	v.SetDefault("exclude", scanner.DefaultExcludes)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("dry_run", false)
	v.SetDefault("batch_size", DefaultBatchSize)
	v.SetDefault("no_progress", false)
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", 0)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// Configure environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Map environment variables to config fields
	for _, key := range []string{
		"workers", "chunk_size", "progress_every", "encodings", "exclude", "ignore",
		"output_dir", "format", "summary_file", "rate_limit", "dry_run",
		"batch_size", "no_progress", "no_color", "verbose",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg := Config{
		Workers:       v.GetInt("workers"),
		ChunkSize:     v.GetInt("chunk_size"),
		ProgressEvery: v.GetInt64("progress_every"),
		Encodings:     stringList(v, "encodings"),
		Excludes:      stringList(v, "exclude"),
		OutputDir:     v.GetString("output_dir"),
		Format:        v.GetString("format"),
		SummaryFile:   v.GetString("summary_file"),
		RateLimit:     v.GetFloat64("rate_limit"),
		DryRun:        v.GetBool("dry_run"),
		BatchSize:     v.GetInt("batch_size"),
		NoProgress:    v.GetBool("no_progress"),
		NoColor:       v.GetBool("no_color"),
		Verbose:       verbosity(v.GetString("verbose")),
	}

	// Handle special case for workers=0
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if v.IsSet("ignore") {
		cfg.IgnorePatterns = stringList(v, "ignore")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// stringList accepts a YAML sequence or a comma-separated string.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	if s, ok := v.Get(key).(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = v.GetStringSlice(key)
	}

	list := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

// verbosity accepts a level ("2") or a string of v's ("vv").
func verbosity(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return strings.Count(s, "v")
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	// Validate workers count
	if c.Workers < 0 {
		return fmt.Errorf("workers count must be positive")
	}
	maxWorkers := runtime.NumCPU() * MaxWorkerMultiplier
	if c.Workers > maxWorkers {
		return fmt.Errorf("workers count cannot exceed system CPU count * 4")
	}

	// Validate chunk size
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.ChunkSize < MinChunkSize {
		return fmt.Errorf("chunk size must be at least 64 bytes")
	}

	if c.ProgressEvery < 0 {
		return fmt.Errorf("progress interval must be non-negative")
	}

	if _, err := c.ProbeOrder(); err != nil {
		return err
	}

	// Validate summary format
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid summary format: must be one of [text json yaml]")
	}

	// Validate rate limit
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	if c.OutputDir == "" && !c.DryRun {
		return fmt.Errorf("output directory is required unless dry-run is set")
	}

	return nil
}

// ProbeOrder parses Encodings into the classifier's trial order
func (c Config) ProbeOrder() ([]classify.Encoding, error) {
	if len(c.Encodings) == 0 {
		return nil, fmt.Errorf("at least one encoding is required")
	}

	order := make([]classify.Encoding, 0, len(c.Encodings))
	seen := make(map[classify.Encoding]bool, len(c.Encodings))
	for _, name := range c.Encodings {
		enc, err := classify.ParseEncoding(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, fmt.Errorf("invalid encodings: %w", err)
		}
		if seen[enc] {
			return nil, fmt.Errorf("invalid encodings: %s listed twice", enc)
		}
		seen[enc] = true
		order = append(order, enc)
	}
	return order, nil
}

// String returns a string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Workers: %d, ChunkSize: %d, ProgressEvery: %d, Encodings: %v, Format: %s, "+
			"RateLimit: %g, DryRun: %v, BatchSize: %d, NoProgress: %v, NoColor: %v, "+
			"Verbose: %d, Excludes: %v, IgnorePatterns: %v, OutputDir: %s, SummaryFile: %s}",
		c.Workers, c.ChunkSize, c.ProgressEvery, c.Encodings, c.Format,
		c.RateLimit, c.DryRun, c.BatchSize, c.NoProgress, c.NoColor,
		c.Verbose, c.Excludes, c.IgnorePatterns, c.OutputDir, c.SummaryFile,
	)
}
