// Package envelope provides a Borsh-encoded container for P-256 signatures
// over a message digest.
//
// An envelope carries the SHA-256 digest of a message together with one or
// more approvals. Each approval is a signature by a named member over the
// SHA-256 hash of the Borsh-encoded payload, so the label and digest are
// both covered.
//
// # Sealing
//
//	env, err := envelope.Seal("release-1.2.0", artifact, "alice", sk, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	raw, err := env.Encode()
//
// Further members co-sign with Approve.
//
// # Verification
//
//	env, err := envelope.DecodeBase64(encoded)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := env.Verify(artifact, 2); err != nil {
//		log.Fatal(err)
//	}
package envelope

import (
	"errors"
	"fmt"

	"github.com/anchorageoss/p256"
)

// Version is the only envelope version this package reads and writes.
const Version uint8 = 1

var (
	// ErrUnsupportedVersion is returned when decoding an envelope of another version.
	ErrUnsupportedVersion = errors.New("envelope: unsupported version")
	// ErrNonCanonical is returned when the input does not re-encode to the
	// same bytes, for example because of trailing data.
	ErrNonCanonical = errors.New("envelope: non-canonical encoding")
	// ErrDigestMismatch is returned when the message does not hash to the payload digest.
	ErrDigestMismatch = errors.New("envelope: message digest mismatch")
	// ErrThreshold is returned when too few approvals verify.
	ErrThreshold = errors.New("envelope: approval threshold not met")
)

type Hash256 [32]byte

// Payload is the signed content of an envelope.
type Payload struct {
	Label  string  `borsh:"label"`
	Digest Hash256 `borsh:"digest"` // SHA-256 of the message
}

// Member identifies a signer by alias and SEC1 uncompressed public key.
type Member struct {
	Alias  string                       `borsh:"alias"`
	PubKey [p256.UncompressedSize]byte `borsh:"pub_key"`
}

// PublicKey decodes the member's key.
func (m Member) PublicKey() (*p256.PublicKey, error) {
	pk, err := p256.NewPublicKey(m.PubKey[:])
	if err != nil {
		return nil, fmt.Errorf("invalid public key for member %q: %w", m.Alias, err)
	}
	return pk, nil
}

// Approval is one member's signature over the payload hash.
type Approval struct {
	Signature [p256.SignatureSize]byte `borsh:"signature"`
	Member    Member                    `borsh:"member"`
}

// Envelope wraps a payload with its approvals.
type Envelope struct {
	Version   uint8      `borsh:"version"`
	Payload   Payload    `borsh:"payload"`
	Approvals []Approval `borsh:"approvals"`
}

// ApprovalResult is the outcome of checking one approval.
type ApprovalResult struct {
	Alias     string
	PublicKey *p256.PublicKey
	Valid     bool
	Err       error // set when the approval is malformed
}
