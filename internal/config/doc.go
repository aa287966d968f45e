// Package config provides configuration management for classify.
// It handles an optional YAML file, environment variables and validation of
// all configuration parameters. Command line flags are applied on top of the
// loaded configuration by the commands package.
//
// # Configuration Loading
//
// Precedence, lowest first: defaults, config file, environment, flags.
//
//	cfg, err := config.LoadFile("/etc/classify.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Using %d workers\n", cfg.Workers)
//
// Load is LoadFile without a file.
//
// # Environment Variables
//
//	CLASSIFY_WORKERS         Number of concurrent workers (0 for CPU count)
//	CLASSIFY_CHUNK_SIZE      Read size in bytes (default: 4096)
//	CLASSIFY_PROGRESS_EVERY  Progress line cadence in files (0 disables)
//	CLASSIFY_EXCLUDE         Comma-separated path substrings to skip
//	CLASSIFY_IGNORE          Comma-separated glob patterns to skip
//	CLASSIFY_OUTPUT_DIR      Directory receiving the path lists (default: .)
//	CLASSIFY_FORMAT          Summary format: text|json|yaml
//	CLASSIFY_SUMMARY_FILE    Summary file path (empty for stdout)
//	CLASSIFY_RATE_LIMIT      Classifications started per second (0 for unlimited)
//	CLASSIFY_DRY_RUN         Keep path lists in memory only (true/false)
//	CLASSIFY_BATCH_SIZE      Paths per file(1) invocation (default: 1000)
//	CLASSIFY_NO_PROGRESS     Disable progress reporting (true/false)
//	CLASSIFY_NO_COLOR        Disable colored output (true/false)
//	CLASSIFY_VERBOSE         Verbosity level (number of 'v's or a number)
//
// # Config File
//
// The file uses the same keys as the environment without the prefix. Lists
// may be YAML sequences:
//
//	workers: 8
//	chunk_size: 65536
//	exclude:
//	  - /.spack/
//	  - /.spack-db/
//	ignore:
//	  - "*.pyc"
//	  - "share/man/"
//
// # Configuration Validation
//
//   - Workers must be non-negative and not exceed CPU cores * 4
//   - ChunkSize must be at least 64 bytes
//   - ProgressEvery must be non-negative
//   - Format must be one of: text, json, yaml
//   - RateLimit must be non-negative
//   - BatchSize must be positive
//   - OutputDir must be set unless DryRun is
//
// # Ignore Patterns
//
// Excludes are plain substrings of the slash-separated path. Ignore patterns
// are globs:
//   - "*.pyc"        - base name of any file
//   - "build/"       - trailing slash matches directories only
//   - "share/man/**" - pattern with a slash matches a path suffix
//
// The configuration is immutable after loading and is safe for concurrent
// access across multiple goroutines.
package config
