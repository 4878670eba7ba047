//go:build !p256_noder

package p256

import (
	"errors"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// MaxDERSize bounds the DER encoding of a signature: a SEQUENCE header and
// two INTEGERs of at most 33 bytes each.
const MaxDERSize = 72

// ParseDERSignature decodes an ASN.1 DER ECDSA-Sig-Value. It returns
// ErrInvalidEncoding for malformed input, trailing data, or components
// outside [1, n-1].
func ParseDERSignature(der []byte) (*Signature, error) {
	var (
		inner cryptobyte.String
		r, s  []byte
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(&r) ||
		!inner.ReadASN1Integer(&s) ||
		!inner.Empty() {
		return nil, ErrInvalidEncoding
	}

	var rb, sb [32]byte
	if !leftPad(&rb, r) || !leftPad(&sb, s) {
		return nil, ErrInvalidEncoding
	}
	return newSignature(&rb, &sb)
}

// DER returns the ASN.1 DER encoding of the signature.
func (sig *Signature) DER() []byte {
	r, s := sig.R(), sig.S()

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addASN1IntBytes(b, r[:])
		addASN1IntBytes(b, s[:])
	})
	return b.BytesOrPanic()
}

// PutDER writes the DER encoding into buf and returns its length.
func (sig *Signature) PutDER(buf *[MaxDERSize]byte) int {
	return copy(buf[:], sig.DER())
}

// addASN1IntBytes encodes a big-endian unsigned integer as a minimal
// ASN.1 INTEGER.
func addASN1IntBytes(b *cryptobyte.Builder, bytes []byte) {
	for len(bytes) > 0 && bytes[0] == 0 {
		bytes = bytes[1:]
	}
	if len(bytes) == 0 {
		b.SetError(errors.New("p256: zero signature component"))
		return
	}
	b.AddASN1(asn1.INTEGER, func(c *cryptobyte.Builder) {
		if bytes[0]&0x80 != 0 {
			c.AddUint8(0)
		}
		c.AddBytes(bytes)
	})
}

// leftPad copies a minimal big-endian integer into a 32-byte buffer.
func leftPad(dst *[32]byte, src []byte) bool {
	if len(src) > len(dst) {
		return false
	}
	copy(dst[len(dst)-len(src):], src)
	return true
}
