package envelope

import (
	"fmt"
	"io"

	"github.com/near/borsh-go"

	"github.com/anchorageoss/p256"
)

// New builds an unsigned envelope for msg.
func New(label string, msg []byte) *Envelope {
	return &Envelope{
		Version: Version,
		Payload: Payload{Label: label, Digest: Hash256(sum256(msg))},
	}
}

// Seal builds an envelope for msg and adds the first approval.
func Seal(label string, msg []byte, alias string, sk *p256.SecretKey, rand io.Reader) (*Envelope, error) {
	env := New(label, msg)
	if err := env.Approve(alias, sk, rand); err != nil {
		return nil, err
	}
	return env, nil
}

// SigningDigest returns the SHA-256 hash of the Borsh-encoded payload, which
// is what every approval signs.
func (e *Envelope) SigningDigest() ([32]byte, error) {
	raw, err := borsh.Serialize(e.Payload)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to serialize payload: %w", err)
	}
	return sum256(raw), nil
}

// Approve signs the payload with sk and appends the approval.
func (e *Envelope) Approve(alias string, sk *p256.SecretKey, rand io.Reader) error {
	digest, err := e.SigningDigest()
	if err != nil {
		return err
	}
	sig, err := sk.SignPrehashed(digest, rand)
	if err != nil {
		return fmt.Errorf("failed to sign payload: %w", err)
	}
	e.Approvals = append(e.Approvals, Approval{
		Signature: sig.Bytes(),
		Member: Member{
			Alias:  alias,
			PubKey: sk.PublicKey().UncompressedBytes(),
		},
	})
	return nil
}

// MatchesMessage reports whether msg hashes to the payload digest.
func (e *Envelope) MatchesMessage(msg []byte) bool {
	return Hash256(sum256(msg)) == e.Payload.Digest
}

// CheckApprovals verifies every approval against the payload.
func (e *Envelope) CheckApprovals() ([]ApprovalResult, error) {
	digest, err := e.SigningDigest()
	if err != nil {
		return nil, err
	}

	results := make([]ApprovalResult, 0, len(e.Approvals))
	for _, a := range e.Approvals {
		res := ApprovalResult{Alias: a.Member.Alias}

		pk, err := a.Member.PublicKey()
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.PublicKey = pk

		sig, err := p256.NewSignature(a.Signature[:])
		if err != nil {
			res.Err = fmt.Errorf("invalid signature from member %q: %w", a.Member.Alias, err)
			results = append(results, res)
			continue
		}

		res.Valid = pk.VerifyPrehashed(digest, sig)
		results = append(results, res)
	}
	return results, nil
}

// Verify checks that msg matches the payload and that at least threshold
// approvals from distinct keys are valid.
func (e *Envelope) Verify(msg []byte, threshold int) error {
	if !e.MatchesMessage(msg) {
		return ErrDigestMismatch
	}

	results, err := e.CheckApprovals()
	if err != nil {
		return err
	}

	seen := make(map[[p256.CompressedSize]byte]bool)
	for _, r := range results {
		if r.Valid {
			seen[r.PublicKey.CompressedBytes()] = true
		}
	}
	if len(seen) < threshold {
		return fmt.Errorf("%w: %d of %d", ErrThreshold, len(seen), threshold)
	}
	return nil
}
