//go:build !p256_noprehash && !p256_noder

package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"io"
)

var _ crypto.Signer = (*Signer)(nil)

// Public returns the public key as an *ecdsa.PublicKey.
func (s *Signer) Public() crypto.PublicKey {
	u := s.pub.UncompressedBytes()
	pub, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), u[:])
	if err != nil {
		panic(fmt.Sprintf("signature: public key rejected by crypto/ecdsa: %v", err))
	}
	return pub
}

// Sign implements crypto.Signer. digest must be 32 bytes and opts, if
// non-nil, must name SHA-256 or no hash. The result is DER encoded, as
// crypto/ecdsa returns it.
func (s *Signer) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.SHA256 && opts.HashFunc() != 0 {
		return nil, fmt.Errorf("signature: unsupported hash %v", opts.HashFunc())
	}
	if len(digest) != 32 {
		return nil, fmt.Errorf("signature: digest must be 32 bytes, got %d", len(digest))
	}
	sig, err := s.key.SignPrehashed([32]byte(digest), rand)
	if err != nil {
		return nil, err
	}
	return sig.DER(), nil
}
