//go:build !p256_noder && !p256_noprehash

// Package verify checks P-256 signatures and signed envelopes and reports
// what was checked.
//
// The verification process validates:
//   - public key encoding (any SEC1 form, untagged x||y, or COSE_Key)
//   - signature encoding (raw r||s or DER)
//   - ECDSA signature correctness over a message or a 32-byte digest
//   - envelope message digests, approvals and thresholds
//
// # Verification Flow
//
//	result, err := verify.NewService(logger).VerifySignature(ctx, &verify.SignatureRequest{
//		PublicKeyHex: "03...",
//		SignatureHex: "3045...",
//		Message:      msg,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !result.Valid {
//		log.Printf("Verification failed: %s", result.Message)
//	}
//
// Malformed input is an error. A well-formed signature that does not match
// is a result with Valid set to false.
package verify

import "github.com/anchorageoss/p256"

// SignatureRequest represents the parameters for verifying one signature
type SignatureRequest struct {
	PublicKeyHex string
	SignatureHex string
	Message      []byte
	// DigestHex, when set, is verified instead of SHA-256(Message).
	DigestHex string
}

// EnvelopeRequest represents the parameters for verifying an envelope
type EnvelopeRequest struct {
	EnvelopeB64  string
	EnvelopePath string
	Message      []byte
	// ExpectedPublicKeyHex, when set, must be among the valid approvers.
	ExpectedPublicKeyHex string
	Threshold            int
}

// SignatureResult represents the result of verifying one signature
type SignatureResult struct {
	Valid           bool            `json:"valid"`
	Message         string          `json:"message"`
	PublicKeyHex    string          `json:"publicKey"`
	DigestHex       string          `json:"digest"`
	SignatureHex    string          `json:"signature"`
	SignatureDERHex string          `json:"signatureDer"`
	SignatureFormat string          `json:"signatureFormat"`
	Backend         string          `json:"backend"`
	PublicKey       *p256.PublicKey `json:"-"`
}

// ApprovalResult represents one checked envelope approval
type ApprovalResult struct {
	Alias        string `json:"alias"`
	PublicKeyHex string `json:"publicKey,omitempty"`
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
}

// EnvelopeResult represents the result of verifying an envelope
type EnvelopeResult struct {
	Valid          bool             `json:"valid"`
	Message        string           `json:"message"`
	Label          string           `json:"label"`
	DigestHex      string           `json:"digest"`
	DigestMatches  bool             `json:"digestMatches"`
	EnvelopeHash   string           `json:"envelopeHash"`
	Threshold      int              `json:"threshold"`
	ValidApprovals int              `json:"validApprovals"`
	KeyMatches     *bool            `json:"expectedKeyMatches,omitempty"`
	Approvals      []ApprovalResult `json:"approvals"`
}
