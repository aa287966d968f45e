/*
Package logger wraps uber-go/zap behind a small interface with verbosity levels
and structured fields.

Basic Usage:

	log := logger.NewLogger(logger.Config{
	    Verbosity: 0,  // Info and above
	})

	log.Info("Run started")
	log.Debug("Candidate rejected") // verbosity >= 1
	log.Trace("Chunk decoded")      // verbosity >= 2

Verbosity Levels:

	0: Info, Warn, Error (default)
	1: Debug + Level 0
	2: Trace + Level 1

Structured Logging:

	log.WithFields(logger.Fields{
	    "path":  "/opt/store/share/doc/README",
	    "error": err,
	}).Warn("Failed to stat candidate")

Output Example (JSON):

	{
	    "level": "warn",
	    "ts": "2024-01-20T15:04:05.000Z",
	    "message": "Failed to stat candidate",
	    "path": "/opt/store/share/doc/README",
	    "error": "permission denied"
	}

Per-candidate failures are logged at warn and never abort a run. Libraries
that receive no logger fall back to Nop.

The logger is safe for concurrent use by multiple goroutines.
*/
package logger
