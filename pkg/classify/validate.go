package classify

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var (
	errNUL                = errors.New("NUL byte in text")
	errOddLength          = errors.New("utf-16: odd number of bytes")
	errUnpairedSurrogate  = errors.New("utf-16: unpaired surrogate")
	errTruncatedSurrogate = errors.New("utf-16: truncated surrogate pair")
	errLatin1Control      = errors.New("iso-8859-1: NUL or C1 control byte")
)

// newValidator returns a fresh strict validator for enc. Validators pass
// input through unchanged or produce no output; only the error matters.
func newValidator(enc Encoding) transform.Transformer {
	switch enc {
	case UTF8:
		return transform.Chain(encoding.UTF8Validator, nulRejecter{})
	case UTF16:
		return &utf16Validator{}
	default:
		return nil
	}
}

// nulRejecter fails on U+0000. NUL is valid UTF-8 but never occurs in text
// files.
type nulRejecter struct{ transform.NopResetter }

func (nulRejecter) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return 0, i, errNUL
	}
	return 0, len(src), nil
}

// utf16Validator checks UTF-16 code unit sequences. A leading BOM selects
// the byte order; without one the stream is read as little endian.
type utf16Validator struct {
	started     bool
	bigEndian   bool
	pendingHigh bool
}

func (v *utf16Validator) Reset() {
	*v = utf16Validator{}
}

func (v *utf16Validator) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !v.started {
		if len(src) < 2 {
			switch {
			case !atEOF:
				return 0, 0, transform.ErrShortSrc
			case len(src) == 1:
				return 0, 0, errOddLength
			default:
				return 0, 0, nil
			}
		}
		switch {
		case src[0] == 0xFF && src[1] == 0xFE:
			nSrc = 2
		case src[0] == 0xFE && src[1] == 0xFF:
			v.bigEndian = true
			nSrc = 2
		}
		v.started = true
	}

	for ; nSrc+1 < len(src); nSrc += 2 {
		var u uint16
		if v.bigEndian {
			u = uint16(src[nSrc])<<8 | uint16(src[nSrc+1])
		} else {
			u = uint16(src[nSrc+1])<<8 | uint16(src[nSrc])
		}

		switch {
		case v.pendingHigh:
			if !isLowSurrogate(u) {
				return 0, nSrc, errUnpairedSurrogate
			}
			v.pendingHigh = false
		case isHighSurrogate(u):
			v.pendingHigh = true
		case isLowSurrogate(u):
			return 0, nSrc, errUnpairedSurrogate
		}
	}

	if nSrc < len(src) {
		if atEOF {
			return 0, nSrc, errOddLength
		}
		return 0, nSrc, transform.ErrShortSrc
	}
	if atEOF && v.pendingHigh {
		return 0, nSrc, errTruncatedSurrogate
	}
	return 0, nSrc, nil
}

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }
func isLowSurrogate(u uint16) bool  { return u >= 0xDC00 && u <= 0xDFFF }

// isLatin1Reject reports bytes that do not occur in ISO-8859-1 text: NUL and
// the C1 control range 0x7F-0x9F.
func isLatin1Reject(b byte) bool {
	return b == 0x00 || (b >= 0x7F && b <= 0x9F)
}

// scanLatin1 is the ISO-8859-1 heuristic. Every byte value is legal in that
// encoding, so a stream is accepted when it contains none of the rejected
// bytes. Binary data that happens to avoid them is accepted too; this false
// positive is the price for a single cheap pass.
func scanLatin1(r io.Reader, buf []byte) error {
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if isLatin1Reject(b) {
				return errLatin1Control
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
