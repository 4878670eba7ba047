//go:build !p256_noder && !p256_noprehash

package verify

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/envelope"
	"github.com/anchorageoss/p256/keys"
)

// Service handles verification logic
type Service struct {
	log *slog.Logger
}

// NewService creates a new verification service. A nil logger discards output.
func NewService(log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{log: log}
}

// VerifySignature checks a single signature
func (s *Service) VerifySignature(ctx context.Context, req *SignatureRequest) (*SignatureResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pub, err := ParsePublicKey(req.PublicKeyHex)
	if err != nil {
		return nil, err
	}

	sig, format, err := ParseSignature(req.SignatureHex)
	if err != nil {
		return nil, err
	}

	var digest [32]byte
	if req.DigestHex != "" {
		raw, err := decodeHex(req.DigestHex)
		if err != nil {
			return nil, fmt.Errorf("failed to decode digest: %w", err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(raw))
		}
		digest = [32]byte(raw)
	} else {
		digest = p256.Sum256(req.Message)
	}

	c := pub.CompressedBytes()
	raw := sig.Bytes()
	result := &SignatureResult{
		PublicKeyHex:    hex.EncodeToString(c[:]),
		DigestHex:       hex.EncodeToString(digest[:]),
		SignatureHex:    hex.EncodeToString(raw[:]),
		SignatureDERHex: hex.EncodeToString(sig.DER()),
		SignatureFormat: format,
		Backend:         p256.Backend(),
		PublicKey:       pub,
	}

	result.Valid = pub.VerifyPrehashed(digest, sig)
	if result.Valid {
		result.Message = "signature is valid"
	} else {
		result.Message = "signature does not match public key and digest"
	}

	s.log.Debug("verified signature",
		"publicKey", result.PublicKeyHex,
		"format", format,
		"valid", result.Valid)
	return result, nil
}

// VerifyEnvelope checks an envelope's digest and approvals
func (s *Service) VerifyEnvelope(ctx context.Context, req *EnvelopeRequest) (*EnvelopeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env, err := s.loadEnvelope(req)
	if err != nil {
		return nil, err
	}

	raw, err := env.Encode()
	if err != nil {
		return nil, err
	}

	threshold := req.Threshold
	if threshold < 1 {
		threshold = 1
	}

	result := &EnvelopeResult{
		Label:         env.Payload.Label,
		DigestHex:     hex.EncodeToString(env.Payload.Digest[:]),
		DigestMatches: env.MatchesMessage(req.Message),
		EnvelopeHash:  envelope.ComputeHash(raw),
		Threshold:     threshold,
	}

	checked, err := env.CheckApprovals()
	if err != nil {
		return nil, err
	}

	var expected *p256.PublicKey
	if req.ExpectedPublicKeyHex != "" {
		if expected, err = ParsePublicKey(req.ExpectedPublicKeyHex); err != nil {
			return nil, fmt.Errorf("invalid expected public key: %w", err)
		}
		matches := false
		result.KeyMatches = &matches
	}

	for _, a := range checked {
		ar := ApprovalResult{Alias: a.Alias, Valid: a.Valid}
		if a.PublicKey != nil {
			c := a.PublicKey.CompressedBytes()
			ar.PublicKeyHex = hex.EncodeToString(c[:])
			if a.Valid && expected != nil && expected.Equal(a.PublicKey) {
				*result.KeyMatches = true
			}
		}
		if a.Err != nil {
			ar.Error = a.Err.Error()
		}
		result.Approvals = append(result.Approvals, ar)
	}

	err = env.Verify(req.Message, threshold)
	result.Valid = err == nil && (result.KeyMatches == nil || *result.KeyMatches)
	// Verify counts distinct keys; report the same number.
	result.ValidApprovals = countDistinctValid(checked)

	switch {
	case errors.Is(err, envelope.ErrDigestMismatch):
		result.Message = "message does not match envelope digest"
	case errors.Is(err, envelope.ErrThreshold):
		result.Message = fmt.Sprintf("only %d of %d required approvals are valid", result.ValidApprovals, threshold)
	case err != nil:
		return nil, err
	case !result.Valid:
		result.Message = "expected public key did not approve the envelope"
	default:
		result.Message = "envelope is valid"
	}

	s.log.Debug("verified envelope",
		"label", result.Label,
		"approvals", len(result.Approvals),
		"valid", result.Valid)
	return result, nil
}

func (s *Service) loadEnvelope(req *EnvelopeRequest) (*envelope.Envelope, error) {
	switch {
	case req.EnvelopeB64 != "" && req.EnvelopePath != "":
		return nil, errors.New("provide either an encoded envelope or a file, not both")
	case req.EnvelopeB64 != "":
		return envelope.DecodeBase64(req.EnvelopeB64)
	case req.EnvelopePath != "":
		return envelope.DecodeFile(req.EnvelopePath)
	default:
		return nil, errors.New("no envelope provided")
	}
}

func countDistinctValid(results []envelope.ApprovalResult) int {
	seen := make(map[[p256.CompressedSize]byte]struct{})
	for _, r := range results {
		if r.Valid {
			seen[r.PublicKey.CompressedBytes()] = struct{}{}
		}
	}
	return len(seen)
}

// ParsePublicKey decodes a hex public key in SEC1 compressed, SEC1
// uncompressed, untagged x||y or COSE_Key form.
func ParsePublicKey(s string) (*p256.PublicKey, error) {
	raw, err := decodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	var pub *p256.PublicKey
	switch len(raw) {
	case p256.UntaggedSize:
		pub, err = p256.NewPublicKeyFromUntagged(raw)
	case p256.CompressedSize, p256.UncompressedSize:
		pub, err = p256.NewPublicKey(raw)
	default:
		pub, _, err = keys.ParseCOSEKey(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// ParseSignature decodes a hex signature, raw r||s or DER, and reports
// which form it was.
func ParseSignature(s string) (*p256.Signature, string, error) {
	raw, err := decodeHex(s)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode signature: %w", err)
	}
	// 64 bytes is read as r||s. Some of those inputs are also valid DER, so
	// DER is only tried when the raw reading is out of range.
	if len(raw) == p256.SignatureSize {
		sig, rawErr := p256.NewSignature(raw)
		if rawErr == nil {
			return sig, "raw", nil
		}
		if sig, err := p256.ParseDERSignature(raw); err == nil {
			return sig, "der", nil
		}
		return nil, "", fmt.Errorf("failed to parse raw signature: %w", rawErr)
	}
	sig, err := p256.ParseDERSignature(raw)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse DER signature: %w", err)
	}
	return sig, "der", nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	return hex.DecodeString(s)
}
