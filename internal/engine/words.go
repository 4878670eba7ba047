package engine

import (
	"crypto/subtle"
	"encoding/binary"
	"runtime"
)

// Words is a 256-bit integer as eight 32-bit limbs, least significant first.
type Words [8]uint32

// Order is the big-endian encoding of the P-256 group order n.
var Order = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xbc, 0xe6, 0xfa, 0xad, 0xa7, 0x17, 0x9e, 0x84,
	0xf3, 0xb9, 0xca, 0xc2, 0xfc, 0x63, 0x25, 0x51,
}

// SetBytes loads w from a big-endian encoding.
func (w *Words) SetBytes(b *[32]byte) *Words {
	for i := range w {
		w[i] = binary.BigEndian.Uint32(b[28-4*i:])
	}
	return w
}

// FillBytes writes the big-endian encoding of w to b.
func (w *Words) FillBytes(b *[32]byte) {
	for i := range w {
		binary.BigEndian.PutUint32(b[28-4*i:], w[i])
	}
}

// Bytes returns the big-endian encoding of w.
func (w *Words) Bytes() [32]byte {
	var b [32]byte
	w.FillBytes(&b)
	return b
}

// IsOdd reports whether the least significant bit is set.
func (w *Words) IsOdd() bool {
	return w[0]&1 == 1
}

// Equal compares two values in constant time.
func (w *Words) Equal(o *Words) bool {
	a, b := w.Bytes(), o.Bytes()
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// Clear zeroes every limb.
func (w *Words) Clear() {
	clear(w[:])
	runtime.KeepAlive(w)
}
