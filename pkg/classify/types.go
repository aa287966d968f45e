package classify

import "fmt"

// Encoding is one of the text encodings the prober can accept.
type Encoding int

const (
	// UTF8 is tried first.
	UTF8 Encoding = iota + 1
	// UTF16 is tried second; byte order comes from the BOM, little endian
	// without one.
	UTF16
	// ISO88591 is the heuristic fallback.
	ISO88591
)

// DefaultEncodings is the trial order. Strictly validated encodings come
// before the heuristic so UTF-16 text is never taken for Latin-1.
var DefaultEncodings = []Encoding{UTF8, UTF16, ISO88591}

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF16:
		return "utf-16"
	case ISO88591:
		return "iso-8859-1"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// MarshalText renders the canonical encoding name.
func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// ParseEncoding maps a canonical name back to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	for _, e := range DefaultEncodings {
		if e.String() == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown encoding: %q", name)
}

// Kind is the top-level outcome for one candidate.
type Kind int

const (
	// Binary means a known executable signature matched.
	Binary Kind = iota
	// Text means an encoding validated the whole stream.
	Text
	// Unclassified means no encoding validated.
	Unclassified
	// Error means the stream could not be opened or read.
	Error
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Text:
		return "text"
	case Unclassified:
		return "unclassified"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Classification is the outcome for a single candidate. Exactly one of the
// kinds applies.
type Classification struct {
	Kind Kind

	// Encoding is set when Kind is Text.
	Encoding Encoding

	// Format names the matched signature when Kind is Binary.
	Format string

	// Err is set when Kind is Error.
	Err error

	// BytesRead counts every byte consumed from the stream, including the
	// signature peek and partial reads of rejected attempts.
	BytesRead int64

	// Attempts lists the encoding trials in order.
	Attempts []Attempt
}

// Label is the encoding name for text and the kind name otherwise.
func (c Classification) Label() string {
	if c.Kind == Text {
		return c.Encoding.String()
	}
	return c.Kind.String()
}

// Attempt is the tagged result of trying one encoding.
type Attempt struct {
	Encoding Encoding

	// Accepted is true when the whole stream validated.
	Accepted bool

	// Rejection describes why validation stopped. It is control flow, not a
	// failure of the run.
	Rejection error

	// BytesRead is what this attempt consumed from the stream.
	BytesRead int64
}
