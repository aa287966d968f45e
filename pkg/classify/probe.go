package classify

import (
	"fmt"
	"io"

	"golang.org/x/text/transform"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

const (
	// DefaultChunkSize is the read size used when none is configured.
	DefaultChunkSize = 4096

	// MinChunkSize is the smallest accepted chunk size.
	MinChunkSize = 64
)

// ProberConfig configures a Prober.
type ProberConfig struct {
	// ChunkSize bounds every read from the stream. Defaults to
	// DefaultChunkSize.
	ChunkSize int

	// Encodings is the trial order. Defaults to DefaultEncodings.
	Encodings []Encoding
}

// Prober runs the ordered encoding trials over a seekable stream without
// buffering it.
type Prober struct {
	chunkSize int
	encodings []Encoding
	log       logger.Logger
}

// Outcome is the result of probing one stream.
type Outcome struct {
	// Encoding is the first accepted encoding; zero when none validated.
	Encoding Encoding

	// Attempts holds one entry per encoding tried, in order.
	Attempts []Attempt

	// BytesRead sums the bytes consumed over all attempts.
	BytesRead int64

	// Err is an I/O failure that stopped probing.
	Err error
}

// Accepted reports whether some encoding validated the stream.
func (o Outcome) Accepted() bool {
	return o.Encoding != 0
}

// NewProber creates a Prober, applying defaults for zero values.
func NewProber(cfg ProberConfig, log logger.Logger) *Prober {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkSize < MinChunkSize {
		cfg.ChunkSize = MinChunkSize
	}
	if len(cfg.Encodings) == 0 {
		cfg.Encodings = DefaultEncodings
	}

	return &Prober{
		chunkSize: cfg.ChunkSize,
		encodings: cfg.Encodings,
		log:       log,
	}
}

// ChunkSize returns the effective read size.
func (p *Prober) ChunkSize() int {
	return p.chunkSize
}

// Probe tries each encoding in order on r, which must be positioned at the
// start. The first encoding that validates the entire stream wins and later
// encodings are not tried. After a rejected attempt r is rewound.
func (p *Prober) Probe(r io.ReadSeeker) Outcome {
	var out Outcome
	buf := make([]byte, p.chunkSize)

	for i, enc := range p.encodings {
		if i > 0 {
			if _, err := r.Seek(0, io.SeekStart); err != nil {
				out.Err = fmt.Errorf("rewind before %s: %w", enc, err)
				return out
			}
		}

		a, ioErr := p.attempt(r, enc, buf)
		out.Attempts = append(out.Attempts, a)
		out.BytesRead += a.BytesRead

		if ioErr != nil {
			out.Err = ioErr
			return out
		}

		p.log.Trace(fmt.Sprintf("%s attempt: accepted=%v bytes=%d rejection=%v",
			enc, a.Accepted, a.BytesRead, a.Rejection))

		if a.Accepted {
			out.Encoding = enc
			return out
		}
	}

	return out
}

// attempt runs a single trial. The second return value is a read failure of
// the underlying stream, as opposed to a validation rejection.
func (p *Prober) attempt(r io.Reader, enc Encoding, buf []byte) (Attempt, error) {
	cr := &chunkReader{r: r, max: p.chunkSize}

	var rejection error
	switch enc {
	case UTF8, UTF16:
		_, rejection = io.Copy(io.Discard, transform.NewReader(cr, newValidator(enc)))
	case ISO88591:
		rejection = scanLatin1(cr, buf)
	default:
		rejection = fmt.Errorf("unsupported encoding %s", enc)
	}

	a := Attempt{
		Encoding:  enc,
		BytesRead: cr.n,
	}
	if cr.err != nil {
		a.Rejection = cr.err
		return a, cr.err
	}
	a.Accepted = rejection == nil
	a.Rejection = rejection
	return a, nil
}

// chunkReader caps each read at max bytes, counts what was consumed and
// remembers the first non-EOF read error.
type chunkReader struct {
	r   io.Reader
	max int
	n   int64
	err error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.max {
		p = p[:c.max]
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err != nil && err != io.EOF && c.err == nil {
		c.err = err
	}
	return n, err
}
