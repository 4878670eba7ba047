//go:build !p256_noder && !p256_noprehash

package verify

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/envelope"
	"github.com/anchorageoss/p256/keys"
	"github.com/anchorageoss/p256/testdata"
)

func vectors(t *testing.T) *testdata.Vectors {
	t.Helper()
	v, err := testdata.LoadVectors()
	require.NoError(t, err)
	return v
}

func TestVerifySignature(t *testing.T) {
	v := vectors(t)
	sv := v.Signatures[1]
	key := v.Keys[0]
	svc := NewService(nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       *SignatureRequest
		wantValid bool
		format    string
	}{
		{
			name:      "raw signature, compressed key",
			req:       &SignatureRequest{PublicKeyHex: key.Compressed, SignatureHex: sv.Raw(), Message: []byte(sv.Message)},
			wantValid: true,
			format:    "raw",
		},
		{
			name:      "der signature, uncompressed key",
			req:       &SignatureRequest{PublicKeyHex: key.Uncompressed(), SignatureHex: sv.DER, Message: []byte(sv.Message)},
			wantValid: true,
			format:    "der",
		},
		{
			name:      "untagged key with 0x prefix",
			req:       &SignatureRequest{PublicKeyHex: "0x" + key.X + key.Y, SignatureHex: sv.Raw(), Message: []byte(sv.Message)},
			wantValid: true,
			format:    "raw",
		},
		{
			name:      "prehashed digest",
			req:       &SignatureRequest{PublicKeyHex: key.Compressed, SignatureHex: v.Signatures[0].Raw(), DigestHex: v.Signatures[0].Digest},
			wantValid: true,
			format:    "raw",
		},
		{
			name:      "wrong message",
			req:       &SignatureRequest{PublicKeyHex: key.Compressed, SignatureHex: sv.Raw(), Message: []byte("other")},
			wantValid: false,
			format:    "raw",
		},
		{
			name:      "wrong key",
			req:       &SignatureRequest{PublicKeyHex: v.Keys[1].Compressed, SignatureHex: sv.DER, Message: []byte(sv.Message)},
			wantValid: false,
			format:    "der",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.VerifySignature(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.format, res.SignatureFormat)
			assert.Equal(t, p256.Backend(), res.Backend)
			assert.NotEmpty(t, res.Message)
		})
	}

	t.Run("normalizes output", func(t *testing.T) {
		res, err := svc.VerifySignature(ctx, &SignatureRequest{PublicKeyHex: key.Uncompressed(), SignatureHex: sv.DER, Message: []byte(sv.Message)})
		require.NoError(t, err)
		assert.Equal(t, key.Compressed, res.PublicKeyHex)
		assert.Equal(t, sv.Raw(), res.SignatureHex)
		assert.Equal(t, sv.DER, res.SignatureDERHex)
		assert.Equal(t, sv.Digest, res.DigestHex)
	})

	errorTests := []struct {
		name string
		req  *SignatureRequest
	}{
		{"bad key hex", &SignatureRequest{PublicKeyHex: "zz", SignatureHex: sv.Raw()}},
		{"off-curve key", &SignatureRequest{PublicKeyHex: "02" + hex.EncodeToString(make([]byte, 31)) + "01", SignatureHex: sv.Raw()}},
		{"bad signature length", &SignatureRequest{PublicKeyHex: key.Compressed, SignatureHex: "0102"}},
		{"zero s", &SignatureRequest{PublicKeyHex: key.Compressed, SignatureHex: sv.R + hex.EncodeToString(make([]byte, 32))}},
		{"short digest", &SignatureRequest{PublicKeyHex: key.Compressed, SignatureHex: sv.Raw(), DigestHex: "00"}},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifySignature(ctx, tt.req)
			assert.Error(t, err)
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.VerifySignature(cctx, tests[0].req)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseSignature(t *testing.T) {
	sv := vectors(t).Signatures[0]

	t.Run("raw and DER vectors", func(t *testing.T) {
		sig, format, err := ParseSignature(sv.Raw())
		require.NoError(t, err)
		assert.Equal(t, "raw", format)
		der, format, err := ParseSignature(sv.DER)
		require.NoError(t, err)
		assert.Equal(t, "der", format)
		assert.True(t, sig.Equal(der))
	})

	t.Run("64 bytes that also parse as DER stay raw", func(t *testing.T) {
		// SEQUENCE { INTEGER 29 bytes, INTEGER 29 bytes } is exactly 64 bytes.
		ambiguous := "303e021d" + strings.Repeat("01", 29) + "021d" + strings.Repeat("02", 29)
		b, err := hex.DecodeString(ambiguous)
		require.NoError(t, err)
		require.Len(t, b, p256.SignatureSize)
		_, err = p256.ParseDERSignature(b)
		require.NoError(t, err)

		sig, format, err := ParseSignature(ambiguous)
		require.NoError(t, err)
		assert.Equal(t, "raw", format)
		r := sig.R()
		assert.Equal(t, b[:32], r[:])
	})

	t.Run("malformed", func(t *testing.T) {
		_, _, err := ParseSignature("3006020101020101ff")
		assert.ErrorIs(t, err, p256.ErrInvalidEncoding)
		_, _, err = ParseSignature(strings.Repeat("00", 64))
		assert.ErrorIs(t, err, p256.ErrInvalidEncoding)
	})
}

func TestParsePublicKeyCOSE(t *testing.T) {
	kp, err := p256.GenerateKeypair(nil)
	require.NoError(t, err)

	cose, err := keys.MarshalCOSEPublicKey(kp.Public)
	require.NoError(t, err)

	pub, err := ParsePublicKey(hex.EncodeToString(cose))
	require.NoError(t, err)
	assert.True(t, kp.Public.Equal(pub))
}

func TestVerifyEnvelope(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)
	msg := []byte("artifact bytes")

	alice, err := p256.GenerateKeypair(nil)
	require.NoError(t, err)
	bob, err := p256.GenerateKeypair(nil)
	require.NoError(t, err)

	env, err := envelope.Seal("v1", msg, "alice", alice.Secret, nil)
	require.NoError(t, err)
	b64, err := env.EncodeBase64()
	require.NoError(t, err)

	aliceHex := hex.EncodeToString(func() []byte { c := alice.Public.CompressedBytes(); return c[:] }())
	bobHex := hex.EncodeToString(func() []byte { c := bob.Public.CompressedBytes(); return c[:] }())

	t.Run("valid", func(t *testing.T) {
		res, err := svc.VerifyEnvelope(ctx, &EnvelopeRequest{EnvelopeB64: b64, Message: msg, ExpectedPublicKeyHex: aliceHex})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.True(t, res.DigestMatches)
		require.NotNil(t, res.KeyMatches)
		assert.True(t, *res.KeyMatches)
		assert.Equal(t, 1, res.ValidApprovals)
		assert.Equal(t, "v1", res.Label)
		require.Len(t, res.Approvals, 1)
		assert.Equal(t, aliceHex, res.Approvals[0].PublicKeyHex)
	})

	t.Run("unexpected signer", func(t *testing.T) {
		res, err := svc.VerifyEnvelope(ctx, &EnvelopeRequest{EnvelopeB64: b64, Message: msg, ExpectedPublicKeyHex: bobHex})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.False(t, *res.KeyMatches)
	})

	t.Run("wrong message", func(t *testing.T) {
		res, err := svc.VerifyEnvelope(ctx, &EnvelopeRequest{EnvelopeB64: b64, Message: []byte("tampered")})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.False(t, res.DigestMatches)
	})

	t.Run("threshold", func(t *testing.T) {
		res, err := svc.VerifyEnvelope(ctx, &EnvelopeRequest{EnvelopeB64: b64, Message: msg, Threshold: 2})
		require.NoError(t, err)
		assert.False(t, res.Valid)

		require.NoError(t, env.Approve("bob", bob.Secret, nil))
		raw, err := env.Encode()
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "env.bin")
		require.NoError(t, os.WriteFile(path, raw, 0o644))

		res, err = svc.VerifyEnvelope(ctx, &EnvelopeRequest{EnvelopePath: path, Message: msg, Threshold: 2})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, 2, res.ValidApprovals)
		assert.Equal(t, envelope.ComputeHash(raw), res.EnvelopeHash)
	})

	t.Run("no envelope", func(t *testing.T) {
		_, err := svc.VerifyEnvelope(ctx, &EnvelopeRequest{Message: msg})
		assert.Error(t, err)
	})

	t.Run("both sources", func(t *testing.T) {
		_, err := svc.VerifyEnvelope(ctx, &EnvelopeRequest{EnvelopeB64: b64, EnvelopePath: "x", Message: msg})
		assert.Error(t, err)
	})
}
