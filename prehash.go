//go:build !p256_noprehash

package p256

import (
	"io"

	sha256 "github.com/minio/sha256-simd"
)

// Sum256 is the SHA-256 digest used by Sign and Verify.
func Sum256(msg []byte) [32]byte {
	return sha256.Sum256(msg)
}

// Sign hashes msg with SHA-256 and signs the digest with SignPrehashed.
func (sk *SecretKey) Sign(msg []byte, rand io.Reader) (*Signature, error) {
	return sk.SignPrehashed(Sum256(msg), rand)
}

// Verify hashes msg with SHA-256 and checks sig with VerifyPrehashed.
func (pk *PublicKey) Verify(msg []byte, sig *Signature) bool {
	return pk.VerifyPrehashed(Sum256(msg), sig)
}
