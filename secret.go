package p256

import (
	"crypto/subtle"
	"io"
	"runtime"

	"github.com/anchorageoss/p256/internal/engine"
	"github.com/anchorageoss/p256/internal/secure"
)

// SecretKeySize is the length of an encoded secret key.
const SecretKeySize = 32

// SecretKey is a P-256 scalar in [1, n-1].
//
// The scalar lives in its own allocation which is cleared by Zeroize, and
// again by a runtime cleanup once the key becomes unreachable. A SecretKey
// must not be copied by value.
type SecretKey struct {
	d *engine.Words
}

func newSecretKey() *SecretKey {
	sk := &SecretKey{d: new(engine.Words)}
	runtime.AddCleanup(sk, func(d *engine.Words) { d.Clear() }, sk.d)
	return sk
}

// NewSecretKey decodes a 32-byte big-endian scalar. It returns
// ErrInvalidEncoding if b has the wrong length or is not in [1, n-1].
func NewSecretKey(b []byte) (*SecretKey, error) {
	if len(b) != SecretKeySize {
		return nil, ErrInvalidEncoding
	}

	var buf [32]byte
	defer secure.Wipe32(&buf)
	copy(buf[:], b)

	sk := newSecretKey()
	sk.d.SetBytes(&buf)
	if !arith.CheckRangeN(sk.d) {
		sk.Zeroize()
		return nil, ErrInvalidEncoding
	}
	return sk, nil
}

// GenerateSecretKey draws a uniformly random secret key from rand by
// rejection sampling. A nil rand means crypto/rand.Reader. The only error is
// a failure of rand itself.
func GenerateSecretKey(rand io.Reader) (*SecretKey, error) {
	sk := newSecretKey()
	if err := sampleScalar(rand, sk.d); err != nil {
		return nil, err
	}
	return sk, nil
}

// Bytes returns the big-endian encoding of the scalar. The result is secret.
func (sk *SecretKey) Bytes() [SecretKeySize]byte {
	sk.mustBeLive()
	return sk.d.Bytes()
}

// PublicKey derives the public key d*G.
func (sk *SecretKey) PublicKey() *PublicKey {
	sk.mustBeLive()
	pk := new(PublicKey)
	if !arith.Keygen(&pk.x, &pk.y, sk.d) {
		panic("p256: engine rejected a validated secret key")
	}
	return pk
}

// SignPrehashed signs a 32-byte digest. A fresh nonce is drawn from rand for
// every attempt, and an attempt the engine rejects (r or s zero) is retried
// with a new nonce. A nil rand means crypto/rand.Reader. The only error is a
// failure of rand itself.
func (sk *SecretKey) SignPrehashed(digest [32]byte, rand io.Reader) (*Signature, error) {
	sk.mustBeLive()

	var k engine.Words
	defer k.Clear()

	sig := new(Signature)
	for {
		if err := sampleScalar(rand, &k); err != nil {
			return nil, err
		}
		if arith.Sign(&sig.r, &sig.s, &digest, sk.d, &k) {
			return sig, nil
		}
		k.Clear()
	}
}

// Agree performs ECDH with pub and returns the x-coordinate of the shared
// point. pub is trusted to be on the curve, which every PublicKey is.
func (sk *SecretKey) Agree(pub *PublicKey) *SharedSecret {
	sk.mustBeLive()
	ss := newSharedSecret()
	if !arith.ECDH(ss.b, sk.d, &pub.x, &pub.y) {
		panic("p256: engine rejected validated ECDH inputs")
	}
	return ss
}

// Equal reports whether sk and other hold the same scalar, in constant time.
func (sk *SecretKey) Equal(other *SecretKey) bool {
	a, b := sk.d.Bytes(), other.d.Bytes()
	defer secure.Wipe32(&a)
	defer secure.Wipe32(&b)
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// Zeroize clears the scalar. The key must not be used afterwards.
func (sk *SecretKey) Zeroize() {
	sk.d.Clear()
}

// mustBeLive panics if the key has been zeroized. Every constructor leaves
// the scalar in range, so only Zeroize can produce this state.
func (sk *SecretKey) mustBeLive() {
	if !arith.CheckRangeN(sk.d) {
		panic("p256: use of zeroized secret key")
	}
}
