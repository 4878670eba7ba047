package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	sha256 "github.com/minio/sha256-simd"
	"github.com/near/borsh-go"
)

// Encode serializes the envelope with Borsh.
func (e *Envelope) Encode() ([]byte, error) {
	raw, err := borsh.Serialize(*e)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize envelope: %w", err)
	}
	return raw, nil
}

// EncodeBase64 serializes the envelope and encodes it as standard base64.
func (e *Envelope) EncodeBase64() (string, error) {
	raw, err := e.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode deserializes a Borsh-encoded envelope. The input must be exactly
// the canonical encoding: borsh.Deserialize ignores trailing bytes, so the
// result is re-serialized and compared with raw.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := borsh.Deserialize(&env, raw); err != nil {
		return nil, fmt.Errorf("failed to deserialize envelope: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	again, err := env.Encode()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(again, raw) {
		return nil, fmt.Errorf("%w: %d bytes decoded, %d given", ErrNonCanonical, len(again), len(raw))
	}
	return &env, nil
}

// DecodeBase64 decodes a base64-encoded envelope.
func DecodeBase64(encoded string) (*Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return Decode(raw)
}

// DecodeFile reads an envelope from a file holding either raw Borsh bytes or
// base64 text.
func DecodeFile(path string) (*Envelope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	env, err := Decode(raw)
	if err == nil {
		return env, nil
	}
	if b64, b64Err := DecodeBase64(string(raw)); b64Err == nil {
		return b64, nil
	}
	return nil, err
}

// ComputeHash returns the hex SHA-256 of an encoded envelope.
func ComputeHash(raw []byte) string {
	sum := sum256(raw)
	return hex.EncodeToString(sum[:])
}

func sum256(b []byte) [32]byte {
	return sha256.Sum256(b)
}
