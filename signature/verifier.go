//go:build !p256_noprehash

package signature

import (
	"hash"

	"github.com/anchorageoss/p256"
)

// Verifier checks signatures against a public key.
type Verifier struct {
	key *p256.PublicKey
}

// NewVerifier wraps pub.
func NewVerifier(pub *p256.PublicKey) *Verifier {
	return &Verifier{key: pub}
}

// Verify checks sig over SHA-256(msg). It returns p256.ErrInvalidEncoding
// for an out-of-range signature and ErrVerification for a signature that
// does not match.
func (v *Verifier) Verify(msg []byte, sig Signature) error {
	s, err := sig.P256()
	if err != nil {
		return err
	}
	if !v.key.Verify(msg, s) {
		return ErrVerification
	}
	return nil
}

// VerifyDigest checks sig over the current state of h.
func (v *Verifier) VerifyDigest(h hash.Hash, sig Signature) error {
	digest, err := digestOf(h)
	if err != nil {
		return err
	}
	s, err := sig.P256()
	if err != nil {
		return err
	}
	if !v.key.VerifyPrehashed(digest, s) {
		return ErrVerification
	}
	return nil
}
