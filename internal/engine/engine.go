// Package engine defines the arithmetic contract the p256 package drives and
// the native scalar representation shared by every implementation.
//
// Two implementations exist:
//   - optimized: constant-time field and scalar arithmetic (filippo.io/nistec, safenum)
//   - portable:  Go's general-purpose crypto/elliptic, crypto/ecdh and math/big
//
// Exactly one is linked into the p256 package, chosen by build tags. Both
// must return byte-identical results for identical inputs.
package engine

// Engine is the set of primitives the key, signature and agreement layer is
// built on. Every method reports failure with a false return and leaves its
// outputs unspecified in that case; the caller decides whether to retry or
// reject.
type Engine interface {
	// Name identifies the implementation.
	Name() string

	// CheckRangeN reports whether 1 <= k <= n-1.
	CheckRangeN(k *Words) bool

	// Keygen computes (x, y) = d*G. It fails if d is out of range.
	Keygen(x, y, d *Words) bool

	// DecodePoint parses a SEC1 compressed (33 bytes) or uncompressed
	// (65 bytes) point. It fails if the point is not on the curve.
	DecodePoint(x, y *Words, sec1 []byte) bool

	// Sign computes the ECDSA signature (r, s) of digest under d with nonce k.
	// It fails if r or s would be zero, or if d or k is out of range.
	Sign(r, s *Words, digest *[32]byte, d, k *Words) bool

	// Verify reports whether (r, s) is a valid signature of digest under (x, y).
	Verify(x, y *Words, digest *[32]byte, r, s *Words) bool

	// ECDH writes the x-coordinate of d*(x, y) to shared.
	ECDH(shared *[32]byte, d, x, y *Words) bool
}
