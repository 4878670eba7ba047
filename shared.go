package p256

import (
	"runtime"

	"github.com/anchorageoss/p256/internal/secure"
)

// SharedSecretSize is the length of an ECDH shared secret.
const SharedSecretSize = 32

// SharedSecret is the big-endian x-coordinate of an ECDH result. It is raw
// key material and should go through a KDF before use as a symmetric key.
type SharedSecret struct {
	b *[SharedSecretSize]byte
}

func newSharedSecret() *SharedSecret {
	ss := &SharedSecret{b: new([SharedSecretSize]byte)}
	runtime.AddCleanup(ss, secure.Wipe32, ss.b)
	return ss
}

// Bytes returns the secret. The slice aliases internal storage and is
// cleared by Zeroize.
func (ss *SharedSecret) Bytes() []byte {
	return ss.b[:]
}

// Zeroize clears the secret.
func (ss *SharedSecret) Zeroize() {
	secure.Wipe32(ss.b)
}
