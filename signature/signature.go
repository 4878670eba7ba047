//go:build !p256_noprehash

// Package signature adapts p256 keys to generic signer and verifier
// interfaces, for code written against crypto.Signer or against a
// fixed-size signature type.
package signature

import (
	"errors"

	"github.com/anchorageoss/p256"
)

// Size is the length of an encoded signature.
const Size = p256.SignatureSize

// ErrVerification is returned when a well-formed signature does not
// authenticate the message.
var ErrVerification = errors.New("signature: verification failed")

// Signature is a raw r||s signature. Converting to and from the validated
// p256.Signature is a relabeling plus a range check.
type Signature [Size]byte

// FromBytes checks that b is a valid r||s signature and copies it.
func FromBytes(b []byte) (Signature, error) {
	sig, err := p256.NewSignature(b)
	if err != nil {
		return Signature{}, err
	}
	return FromP256(sig), nil
}

// FromP256 wraps a validated signature.
func FromP256(sig *p256.Signature) Signature {
	return Signature(sig.Bytes())
}

// Bytes returns r||s.
func (s Signature) Bytes() []byte {
	return s[:]
}

// P256 validates s and returns it as a p256.Signature.
func (s Signature) P256() (*p256.Signature, error) {
	return p256.NewSignature(s[:])
}
