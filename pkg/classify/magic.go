package classify

import (
	"bytes"
	"io"
)

// SignatureLen is the number of leading bytes the detector inspects.
const SignatureLen = 4

// Signature is a fixed prefix identifying an executable or object format.
type Signature struct {
	Format string
	Magic  [SignatureLen]byte
}

// Signatures lists the recognised binary formats. Java class files share the
// 0xcafebabe magic with Mach-O universal binaries and are accepted as binary
// as well.
var Signatures = []Signature{
	{Format: "elf", Magic: [4]byte{0x7F, 'E', 'L', 'F'}},
	{Format: "mach-o-32-be", Magic: [4]byte{0xFE, 0xED, 0xFA, 0xCE}},
	{Format: "mach-o-32-le", Magic: [4]byte{0xCE, 0xFA, 0xED, 0xFE}},
	{Format: "mach-o-64-be", Magic: [4]byte{0xFE, 0xED, 0xFA, 0xCF}},
	{Format: "mach-o-64-le", Magic: [4]byte{0xCF, 0xFA, 0xED, 0xFE}},
	{Format: "mach-o-fat-be", Magic: [4]byte{0xCA, 0xFE, 0xBA, 0xBE}},
	{Format: "mach-o-fat-le", Magic: [4]byte{0xBE, 0xBA, 0xFE, 0xCA}},
}

// DetectBinary matches a prefix against Signatures. Only an exact match of
// all SignatureLen bytes counts; shorter prefixes never match.
func DetectBinary(prefix []byte) (Signature, bool) {
	if len(prefix) < SignatureLen {
		return Signature{}, false
	}
	for _, sig := range Signatures {
		if bytes.Equal(prefix[:SignatureLen], sig.Magic[:]) {
			return sig, true
		}
	}
	return Signature{}, false
}

// peekSignature reads up to SignatureLen bytes. A short file is not an
// error.
func peekSignature(r io.Reader) ([]byte, error) {
	buf := make([]byte, SignatureLen)
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return buf[:n], err
}
