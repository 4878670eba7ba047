//go:build !p256_noder && !p256_noprehash

package verify

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anchorageoss/p256/envelope"
)

// Formatter formats verification results and envelopes for display
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatJSON renders v as indented JSON
func (f *Formatter) FormatJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out) + "\n", nil
}

// FormatSignatureResult formats a signature result for display
func (f *Formatter) FormatSignatureResult(r *SignatureResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Signature: %s\n", status(r.Valid)))
	sb.WriteString(fmt.Sprintf("  %s\n", r.Message))
	sb.WriteString(fmt.Sprintf("  Public Key: %s\n", r.PublicKeyHex))
	sb.WriteString(fmt.Sprintf("  Digest:     %s\n", r.DigestHex))
	sb.WriteString(fmt.Sprintf("  Signature:  %s (%s input)\n", r.SignatureHex, r.SignatureFormat))
	sb.WriteString(fmt.Sprintf("  DER:        %s\n", r.SignatureDERHex))
	sb.WriteString(fmt.Sprintf("  Backend:    %s\n", r.Backend))
	return sb.String()
}

// FormatEnvelopeResult formats an envelope result for display
func (f *Formatter) FormatEnvelopeResult(r *EnvelopeResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Envelope: %s\n", status(r.Valid)))
	sb.WriteString(fmt.Sprintf("  %s\n", r.Message))
	sb.WriteString(fmt.Sprintf("  Label:   %s\n", r.Label))
	sb.WriteString(fmt.Sprintf("  Digest:  %s (%s)\n", r.DigestHex, matchWord(r.DigestMatches)))
	sb.WriteString(fmt.Sprintf("  Hash:    %s\n", r.EnvelopeHash))
	if r.KeyMatches != nil {
		sb.WriteString(fmt.Sprintf("  Expected key: %s\n", matchWord(*r.KeyMatches)))
	}

	sb.WriteString(fmt.Sprintf("\nApprovals (%d of %d required):\n", r.ValidApprovals, r.Threshold))
	for i, a := range r.Approvals {
		line := fmt.Sprintf("  %d. %s %s", i+1, a.Alias, status(a.Valid))
		if a.PublicKeyHex != "" {
			line += fmt.Sprintf(" (%s)", shorten(a.PublicKeyHex))
		}
		if a.Error != "" {
			line += ": " + a.Error
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// FormatEnvelope formats envelope contents for display
func (f *Formatter) FormatEnvelope(env *envelope.Envelope) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Version: %d\n", env.Version))
	sb.WriteString("\nPayload:\n")
	sb.WriteString(fmt.Sprintf("  Label:  %s\n", env.Payload.Label))
	sb.WriteString(fmt.Sprintf("  Digest: %s\n", hex.EncodeToString(env.Payload.Digest[:])))

	sb.WriteString(fmt.Sprintf("\nApprovals (%d):\n", len(env.Approvals)))
	for i, a := range env.Approvals {
		sb.WriteString(fmt.Sprintf("  Member %d: %s (%s)\n", i+1, a.Member.Alias, shorten(hex.EncodeToString(a.Member.PubKey[:]))))
	}
	return sb.String()
}

// FormatApprovals formats envelope approvals for JSON output
func (f *Formatter) FormatApprovals(approvals []envelope.Approval) []map[string]any {
	result := make([]map[string]any, len(approvals))
	for i, a := range approvals {
		result[i] = map[string]any{
			"signature": hex.EncodeToString(a.Signature[:]),
			"member": map[string]string{
				"alias":  a.Member.Alias,
				"pubKey": hex.EncodeToString(a.Member.PubKey[:]),
			},
		}
	}
	return result
}

func status(ok bool) string {
	if ok {
		return "✓ valid"
	}
	return "✗ invalid"
}

func matchWord(ok bool) string {
	if ok {
		return "matches"
	}
	return "does not match"
}

func shorten(s string) string {
	if len(s) > 16 {
		return s[:16] + "..."
	}
	return s
}
