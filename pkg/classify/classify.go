/*
Package classify decides whether a file is a known binary or text in one of
a small set of encodings, reading it in bounded chunks.

A candidate goes through two stages:

 1. The first four bytes are compared with known executable signatures
    (ELF, Mach-O, 0xcafebabe). A match ends classification immediately.
 2. Otherwise the stream is rewound and the Prober tries UTF-8, UTF-16 and
    ISO-8859-1 in that order. UTF-8 and UTF-16 are strict decodes that fail
    on the first invalid sequence; ISO-8859-1 is accepted when the stream has
    no NUL and no byte in 0x7F-0x9F.

Every byte read, including the signature peek and the partial reads of
rejected attempts, is counted in Classification.BytesRead.

Basic usage:

	c := classify.New(classify.Config{ChunkSize: 4096}, afero.NewOsFs(), log)
	result := c.Classify(candidate)
	fmt.Println(result.Label())
*/
package classify

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/haampie/classify-text-experiment/pkg/logger"
	"github.com/haampie/classify-text-experiment/pkg/scanner"
)

// Config configures a Classifier.
type Config struct {
	ChunkSize int
	Encodings []Encoding
}

// Classifier opens candidates on a filesystem and classifies them. It holds
// no per-candidate state and is safe for concurrent use.
type Classifier struct {
	fs     afero.Fs
	prober *Prober
	log    logger.Logger
}

// New creates a Classifier.
func New(cfg Config, fs afero.Fs, log logger.Logger) *Classifier {
	if log == nil {
		log = logger.Nop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Classifier{
		fs: fs,
		prober: NewProber(ProberConfig{
			ChunkSize: cfg.ChunkSize,
			Encodings: cfg.Encodings,
		}, log),
		log: log,
	}
}

// Classify opens the candidate, classifies it and closes the stream on every
// path. Open failures yield Kind Error wrapping a *scanner.OpenError.
func (c *Classifier) Classify(cand scanner.Candidate) Classification {
	f, err := c.fs.Open(cand.Path)
	if err != nil {
		c.log.WithFields(logger.Fields{
			"path":  cand.Path,
			"error": err,
		}).Warn("Failed to open candidate")
		return Classification{
			Kind: Error,
			Err:  &scanner.OpenError{Path: cand.Path, Err: err},
		}
	}
	defer f.Close()

	result := c.ClassifyStream(f)
	if result.Kind == Error {
		c.log.WithFields(logger.Fields{
			"path":  cand.Path,
			"error": result.Err,
		}).Warn("Failed to read candidate")
		result.Err = fmt.Errorf("%s: %w", cand.Path, result.Err)
	}

	c.log.WithFields(logger.Fields{
		"path":      cand.Path,
		"size":      cand.Size,
		"result":    result.Label(),
		"bytesRead": result.BytesRead,
	}).Debug("Candidate classified")

	return result
}

// ClassifyStream classifies an already open stream positioned at its start.
// The caller keeps ownership of r.
func (c *Classifier) ClassifyStream(r io.ReadSeeker) Classification {
	var result Classification

	cr := &chunkReader{r: r, max: c.prober.ChunkSize()}
	prefix, err := peekSignature(cr)
	result.BytesRead += cr.n
	if err != nil {
		result.Kind = Error
		result.Err = fmt.Errorf("read signature: %w", err)
		return result
	}

	if sig, ok := DetectBinary(prefix); ok {
		result.Kind = Binary
		result.Format = sig.Format
		return result
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		result.Kind = Error
		result.Err = fmt.Errorf("rewind after signature: %w", err)
		return result
	}

	out := c.prober.Probe(r)
	result.BytesRead += out.BytesRead
	result.Attempts = out.Attempts

	switch {
	case out.Err != nil:
		result.Kind = Error
		result.Err = out.Err
	case out.Accepted():
		result.Kind = Text
		result.Encoding = out.Encoding
	default:
		result.Kind = Unclassified
	}

	return result
}
