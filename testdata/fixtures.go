// Package testdata provides embedded test fixtures for use across all test packages.
package testdata

import (
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// VectorsJSON holds the fixed key, agreement and signature vectors.
//
//go:embed vectors.json
var VectorsJSON []byte

// ConfigYAML is a complete CLI configuration file.
//
//go:embed config.yaml
var ConfigYAML []byte

// Key is a known secret key and its public key, all hex encoded.
type Key struct {
	Name       string `json:"name"`
	Secret     string `json:"secret"`
	X          string `json:"x"`
	Y          string `json:"y"`
	Compressed string `json:"compressed"`
}

// Uncompressed returns the SEC1 uncompressed encoding in hex.
func (k Key) Uncompressed() string {
	return "04" + k.X + k.Y
}

// SignatureVector is a signature produced with a fixed nonce.
type SignatureVector struct {
	Name    string `json:"name"`
	Secret  string `json:"secret"`
	Message string `json:"message,omitempty"`
	Digest  string `json:"digest"`
	Nonce   string `json:"nonce"`
	R       string `json:"r"`
	S       string `json:"s"`
	DER     string `json:"der"`
}

// Raw returns r||s in hex.
func (v SignatureVector) Raw() string {
	return v.R + v.S
}

// Vectors is the decoded content of vectors.json.
type Vectors struct {
	Keys []Key `json:"keys"`
	ECDH struct {
		// Shared is the x-coordinate of keys[0].secret * keys[1].public.
		Shared string `json:"shared"`
	} `json:"ecdh"`
	Signatures []SignatureVector `json:"signatures"`
}

// LoadVectors decodes the embedded vectors.
func LoadVectors() (*Vectors, error) {
	var v Vectors
	if err := json.Unmarshal(VectorsJSON, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vectors: %w", err)
	}
	return &v, nil
}

// MustHex decodes a hex string and panics on malformed input.
func MustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("testdata: bad hex %q: %v", s, err))
	}
	return b
}
