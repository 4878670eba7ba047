package p256

import (
	"crypto/subtle"

	"github.com/anchorageoss/p256/internal/engine"
)

// Public key encoding sizes.
const (
	CompressedSize   = 33
	UncompressedSize = 65
	UntaggedSize     = 64
)

const (
	tagEven         = 0x02
	tagOdd          = 0x03
	tagUncompressed = 0x04
)

// PublicKey is a point on P-256 other than the identity.
type PublicKey struct {
	x, y engine.Words
}

// NewPublicKey decodes a SEC1 compressed or uncompressed point. It returns
// ErrInvalidEncoding for an unknown tag, a length that does not match the
// tag, or a point that is not on the curve.
func NewPublicKey(sec1 []byte) (*PublicKey, error) {
	if len(sec1) == 0 {
		return nil, ErrInvalidEncoding
	}
	switch sec1[0] {
	case tagEven, tagOdd:
		if len(sec1) != CompressedSize {
			return nil, ErrInvalidEncoding
		}
	case tagUncompressed:
		if len(sec1) != UncompressedSize {
			return nil, ErrInvalidEncoding
		}
	default:
		return nil, ErrInvalidEncoding
	}

	pk := new(PublicKey)
	if !arith.DecodePoint(&pk.x, &pk.y, sec1) {
		return nil, ErrInvalidEncoding
	}
	return pk, nil
}

// NewPublicKeyFromUntagged decodes a raw 64-byte x||y point. It is the
// inverse of UntaggedBytes.
func NewPublicKeyFromUntagged(b []byte) (*PublicKey, error) {
	if len(b) != UntaggedSize {
		return nil, ErrInvalidEncoding
	}
	var buf [UncompressedSize]byte
	buf[0] = tagUncompressed
	copy(buf[1:], b)
	return NewPublicKey(buf[:])
}

// CompressedBytes returns the SEC1 compressed encoding: 0x02 for even y or
// 0x03 for odd y, followed by x.
func (pk *PublicKey) CompressedBytes() [CompressedSize]byte {
	var out [CompressedSize]byte
	out[0] = tagEven
	if pk.y.IsOdd() {
		out[0] = tagOdd
	}
	x := pk.x.Bytes()
	copy(out[1:], x[:])
	return out
}

// UncompressedBytes returns the SEC1 uncompressed encoding 0x04||x||y.
func (pk *PublicKey) UncompressedBytes() [UncompressedSize]byte {
	var out [UncompressedSize]byte
	out[0] = tagUncompressed
	x, y := pk.x.Bytes(), pk.y.Bytes()
	copy(out[1:33], x[:])
	copy(out[33:], y[:])
	return out
}

// UntaggedBytes returns x||y without a tag byte.
func (pk *PublicKey) UntaggedBytes() [UntaggedSize]byte {
	u := pk.UncompressedBytes()
	return [UntaggedSize]byte(u[1:])
}

// X returns the big-endian x-coordinate.
func (pk *PublicKey) X() [32]byte { return pk.x.Bytes() }

// Y returns the big-endian y-coordinate.
func (pk *PublicKey) Y() [32]byte { return pk.y.Bytes() }

// VerifyPrehashed reports whether sig is a valid signature of digest. An
// invalid signature is not an error.
func (pk *PublicKey) VerifyPrehashed(digest [32]byte, sig *Signature) bool {
	return arith.Verify(&pk.x, &pk.y, &digest, &sig.r, &sig.s)
}

// Equal reports whether pk and other are the same point.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	a, b := pk.UncompressedBytes(), other.UncompressedBytes()
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
