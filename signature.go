package p256

import (
	"github.com/anchorageoss/p256/internal/engine"
)

// SignatureSize is the length of an untagged r||s signature.
const SignatureSize = 64

// Signature is an ECDSA signature with r and s in [1, n-1].
type Signature struct {
	r, s engine.Words
}

// NewSignature decodes a raw 64-byte r||s signature. r and s are checked
// independently; either being out of range returns ErrInvalidEncoding.
func NewSignature(b []byte) (*Signature, error) {
	if len(b) != SignatureSize {
		return nil, ErrInvalidEncoding
	}
	return newSignature((*[32]byte)(b[:32]), (*[32]byte)(b[32:]))
}

func newSignature(r, s *[32]byte) (*Signature, error) {
	sig := new(Signature)
	sig.r.SetBytes(r)
	sig.s.SetBytes(s)
	if !arith.CheckRangeN(&sig.r) || !arith.CheckRangeN(&sig.s) {
		return nil, ErrInvalidEncoding
	}
	return sig, nil
}

// Bytes returns big-endian r||s.
func (sig *Signature) Bytes() [SignatureSize]byte {
	var out [SignatureSize]byte
	r, s := sig.r.Bytes(), sig.s.Bytes()
	copy(out[:32], r[:])
	copy(out[32:], s[:])
	return out
}

// R returns the big-endian r component.
func (sig *Signature) R() [32]byte { return sig.r.Bytes() }

// S returns the big-endian s component.
func (sig *Signature) S() [32]byte { return sig.s.Bytes() }

// Equal reports whether both signatures have the same components.
func (sig *Signature) Equal(other *Signature) bool {
	return sig.r == other.r && sig.s == other.s
}
