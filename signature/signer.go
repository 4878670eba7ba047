//go:build !p256_noprehash

package signature

import (
	"fmt"
	"hash"
	"io"

	"github.com/anchorageoss/p256"
)

// Signer produces randomized ECDSA signatures with a secret key.
type Signer struct {
	key *p256.SecretKey
	pub *p256.PublicKey
}

// NewSigner wraps sk. The signer does not copy the key; zeroizing sk
// invalidates the signer.
func NewSigner(sk *p256.SecretKey) *Signer {
	return &Signer{key: sk, pub: sk.PublicKey()}
}

// PublicKey returns the verifying key.
func (s *Signer) PublicKey() *p256.PublicKey {
	return s.pub
}

// Verifier returns a verifier for the signer's public key.
func (s *Signer) Verifier() *Verifier {
	return NewVerifier(s.pub)
}

// SignWithRand hashes msg with SHA-256 and signs it with a nonce drawn from rand.
func (s *Signer) SignWithRand(rand io.Reader, msg []byte) (Signature, error) {
	sig, err := s.key.Sign(msg, rand)
	if err != nil {
		return Signature{}, err
	}
	return FromP256(sig), nil
}

// SignDigestWithRand signs the current state of h, which must be a 32-byte
// digest such as SHA-256.
func (s *Signer) SignDigestWithRand(rand io.Reader, h hash.Hash) (Signature, error) {
	digest, err := digestOf(h)
	if err != nil {
		return Signature{}, err
	}
	sig, err := s.key.SignPrehashed(digest, rand)
	if err != nil {
		return Signature{}, err
	}
	return FromP256(sig), nil
}

func digestOf(h hash.Hash) ([32]byte, error) {
	if h.Size() != 32 {
		return [32]byte{}, fmt.Errorf("signature: digest must be 32 bytes, got %d", h.Size())
	}
	return [32]byte(h.Sum(nil)), nil
}
