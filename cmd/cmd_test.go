//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/testdata"
)

func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := append([]string{"p256", "--key-dir", dir}, args...)
	err := app.Run(context.Background(), full)
	return stdout.String(), stderr.String(), err
}

func loadVectors(t *testing.T) *testdata.Vectors {
	t.Helper()
	v, err := testdata.LoadVectors()
	require.NoError(t, err)
	return v
}

func flagNames(c *cli.Command) map[string]bool {
	names := make(map[string]bool)
	for _, f := range c.Flags {
		switch fl := f.(type) {
		case *cli.StringFlag:
			names[fl.Name] = true
		case *cli.BoolFlag:
			names[fl.Name] = true
		case *cli.IntFlag:
			names[fl.Name] = true
		}
	}
	return names
}

func TestCommands(t *testing.T) {
	tests := []struct {
		cmd   *cli.Command
		name  string
		flags []string
	}{
		{KeygenCommand(), "keygen", []string{"name", "cose-out", "print-secret"}},
		{PubkeyCommand(), "pubkey", []string{"public", "format", "key-name", "secret-hex", "cose-key"}},
		{SignCommand(), "sign", []string{"key-name", "message", "message-file", "digest", "der", "envelope", "label", "alias", "max-draws"}},
		{VerifyCommand(), "verify", []string{"public-key", "signature", "envelope", "envelope-file", "threshold", "expected-key", "message", "digest"}},
		{AgreeCommand(), "agree", []string{"peer", "key-name", "secret-hex"}},
		{ConvertSignatureCommand(), "convert-signature", []string{"signature"}},
		{ListKeysCommand(), "list-keys", nil},
		{BackendCommand(), "backend", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.name, tt.cmd.Name)
			require.NotEmpty(t, tt.cmd.Usage)
			require.NotNil(t, tt.cmd.Action)

			names := flagNames(tt.cmd)
			for _, f := range tt.flags {
				assert.True(t, names[f], "missing flag %s", f)
			}
		})
	}

	t.Run("agree requires peer", func(t *testing.T) {
		for _, f := range AgreeCommand().Flags {
			if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "peer" {
				require.True(t, sf.Required)
				return
			}
		}
		t.Fatal("peer flag not found")
	})

	t.Run("max-draws counts every draw", func(t *testing.T) {
		for _, f := range SignCommand().Flags {
			if nf, ok := f.(*cli.IntFlag); ok && nf.Name == "max-draws" {
				assert.Contains(t, nf.Usage, "total nonce draws")
				return
			}
		}
		t.Fatal("max-draws flag not found")
	})

	t.Run("envelope subcommands", func(t *testing.T) {
		c := EnvelopeCommand()
		require.Len(t, c.Commands, 2)
		require.Equal(t, "inspect", c.Commands[0].Name)
		require.Equal(t, "approve", c.Commands[1].Name)
	})
}

func TestKeygen(t *testing.T) {
	dir := t.TempDir()

	t.Run("requires a destination", func(t *testing.T) {
		_, _, err := run(t, dir, "keygen")
		require.Error(t, err)
		require.Contains(t, err.Error(), "--print-secret")
	})

	t.Run("saves to the key directory", func(t *testing.T) {
		stdout, stderr, err := run(t, dir, "keygen", "--name", "alice")
		require.NoError(t, err)
		require.Contains(t, stderr, "✓ Saved key \"alice\"")
		require.Contains(t, stdout, "Public Key: ")
		require.NotContains(t, stdout, "Secret Key")

		pubHex := strings.TrimSpace(strings.TrimPrefix(stdout, "Public Key: "))
		listed, _, err := run(t, dir, "list-keys")
		require.NoError(t, err)
		require.Equal(t, "alice\t"+pubHex+"\n", listed)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, _, err := run(t, dir, "keygen", "--name", "alice")
		require.Error(t, err)
	})

	t.Run("print secret", func(t *testing.T) {
		stdout, _, err := run(t, dir, "--output", "json", "keygen", "--print-secret")
		require.NoError(t, err)

		var out keygenOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		require.Len(t, out.SecretKey, 64)

		derived, _, err := run(t, dir, "pubkey", "--secret-hex", out.SecretKey)
		require.NoError(t, err)
		require.Equal(t, out.PublicKey+"\n", derived)
	})

	t.Run("COSE output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key.cbor")
		stdout, _, err := run(t, dir, "keygen", "--cose-out", path)
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		derived, _, err := run(t, dir, "pubkey", "--cose-key", path)
		require.NoError(t, err)
		require.Equal(t, strings.TrimPrefix(stdout, "Public Key: "), derived)
	})
}

func TestPubkey(t *testing.T) {
	v := loadVectors(t)
	key := v.Keys[0]
	dir := t.TempDir()

	formats := map[string]string{
		"compressed":   key.Compressed,
		"uncompressed": key.Uncompressed(),
		"untagged":     key.X + key.Y,
	}
	for format, want := range formats {
		t.Run("derive "+format, func(t *testing.T) {
			stdout, _, err := run(t, dir, "pubkey", "--secret-hex", key.Secret, "--format", format)
			require.NoError(t, err)
			require.Equal(t, want+"\n", stdout)
		})
	}

	t.Run("re-encode", func(t *testing.T) {
		stdout, _, err := run(t, dir, "pubkey", "--public", key.Uncompressed())
		require.NoError(t, err)
		require.Equal(t, key.Compressed+"\n", stdout)
	})

	t.Run("COSE round trip", func(t *testing.T) {
		cose, _, err := run(t, dir, "pubkey", "--public", key.Compressed, "--format", "cose")
		require.NoError(t, err)

		stdout, _, err := run(t, dir, "pubkey", "--public", strings.TrimSpace(cose))
		require.NoError(t, err)
		require.Equal(t, key.Compressed+"\n", stdout)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := run(t, dir, "pubkey", "--public", key.Compressed, "--format", "pem")
		require.Error(t, err)
	})

	t.Run("no input", func(t *testing.T) {
		_, _, err := run(t, dir, "pubkey")
		require.Error(t, err)
	})
}

func TestSignAndVerify(t *testing.T) {
	v := loadVectors(t)
	dir := t.TempDir()

	_, _, err := run(t, dir, "keygen", "--name", "signer")
	require.NoError(t, err)
	pub, _, err := run(t, dir, "pubkey", "--key-name", "signer")
	require.NoError(t, err)
	pubHex := strings.TrimSpace(pub)

	t.Run("message", func(t *testing.T) {
		sig, _, err := run(t, dir, "sign", "--key-name", "signer", "--message", "hello")
		require.NoError(t, err)
		sigHex := strings.TrimSpace(sig)
		require.Len(t, sigHex, 128)

		stdout, _, err := run(t, dir, "verify", "--public-key", pubHex, "--signature", sigHex, "--message", "hello")
		require.NoError(t, err)
		require.Contains(t, stdout, "✓ valid")

		stdout, _, err = run(t, dir, "verify", "--public-key", pubHex, "--signature", sigHex, "--message", "hellp")
		require.ErrorIs(t, err, errVerificationFailed)
		require.Contains(t, stdout, "✗ invalid")
	})

	t.Run("message file and DER", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "msg.bin")
		require.NoError(t, os.WriteFile(path, []byte(v.Signatures[1].Message), 0o644))

		sig, _, err := run(t, dir, "sign", "--key-name", "signer", "--message-file", path, "--der")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(sig, "30"))

		_, _, err = run(t, dir, "verify", "--public-key", pubHex, "--signature", strings.TrimSpace(sig), "--message", v.Signatures[1].Message)
		require.NoError(t, err)
	})

	t.Run("digest", func(t *testing.T) {
		digest := v.Signatures[0].Digest
		stdout, _, err := run(t, dir, "--output", "json", "sign", "--secret-hex", v.Keys[0].Secret, "--digest", digest, "--max-draws", "16")
		require.NoError(t, err)

		var out signOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		require.Equal(t, digest, out.Digest)
		require.Equal(t, v.Keys[0].Compressed, out.PublicKey)

		_, _, err = run(t, dir, "verify", "--public-key", v.Keys[0].Uncompressed(), "--signature", out.DER, "--digest", digest)
		require.NoError(t, err)
	})

	t.Run("one draw is enough", func(t *testing.T) {
		// The accepted nonce is the only draw a healthy source needs.
		_, _, err := run(t, dir, "sign", "--secret-hex", v.Keys[0].Secret, "--digest", v.Signatures[0].Digest, "--max-draws", "1")
		require.NoError(t, err)
	})

	t.Run("known vector", func(t *testing.T) {
		sv := v.Signatures[0]
		stdout, _, err := run(t, dir, "--output", "json", "verify", "--public-key", v.Keys[0].Compressed, "--signature", sv.Raw(), "--digest", sv.Digest)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		require.Equal(t, true, out["valid"])
		require.Equal(t, sv.DER, out["signatureDer"])
	})

	t.Run("sign needs input", func(t *testing.T) {
		_, _, err := run(t, dir, "sign", "--key-name", "signer")
		require.Error(t, err)
	})

	t.Run("sign needs a key", func(t *testing.T) {
		_, _, err := run(t, dir, "sign", "--message", "x")
		require.ErrorIs(t, err, errNoKey)
	})

	t.Run("verify needs key and signature", func(t *testing.T) {
		_, _, err := run(t, dir, "verify", "--message", "x")
		require.Error(t, err)
	})
}

func TestAgree(t *testing.T) {
	v := loadVectors(t)
	dir := t.TempDir()

	stdout, _, err := run(t, dir, "agree", "--secret-hex", v.Keys[0].Secret, "--peer", v.Keys[1].Compressed)
	require.NoError(t, err)
	require.Equal(t, v.ECDH.Shared+"\n", stdout)

	stdout, _, err = run(t, dir, "agree", "--secret-hex", v.Keys[1].Secret, "--peer", v.Keys[0].Uncompressed())
	require.NoError(t, err)
	require.Equal(t, v.ECDH.Shared+"\n", stdout)

	_, _, err = run(t, dir, "agree", "--secret-hex", v.Keys[0].Secret, "--peer", "02"+strings.Repeat("00", 31)+"01")
	require.Error(t, err)
}

func TestConvertSignature(t *testing.T) {
	sv := loadVectors(t).Signatures[0]
	dir := t.TempDir()

	stdout, _, err := run(t, dir, "--output", "json", "convert-signature", "--signature", sv.Raw())
	require.NoError(t, err)

	var out convertOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Equal(t, "raw", out.Input)
	require.Equal(t, sv.DER, out.DER)
	require.Equal(t, sv.R, out.R)
	require.Equal(t, sv.S, out.S)

	stdout, _, err = run(t, dir, "convert-signature", "--signature", sv.DER)
	require.NoError(t, err)
	require.Contains(t, stdout, "Input: der")
	require.Contains(t, stdout, sv.Raw())

	_, _, err = run(t, dir, "convert-signature", "--signature", "3000")
	require.Error(t, err)
}

func TestEnvelopeFlow(t *testing.T) {
	dir := t.TempDir()
	msg := "release-1.2.3.tar.gz contents"

	for _, name := range []string{"alice", "bob"} {
		_, _, err := run(t, dir, "keygen", "--name", name)
		require.NoError(t, err)
	}
	bobPub, _, err := run(t, dir, "pubkey", "--key-name", "bob")
	require.NoError(t, err)

	sealed, stderr, err := run(t, dir, "sign", "--envelope", "--key-name", "alice", "--label", "release", "--message", msg)
	require.NoError(t, err)
	require.Contains(t, stderr, "has 1 approval(s)")
	sealed = strings.TrimSpace(sealed)

	inspect, _, err := run(t, dir, "envelope", "inspect", "--envelope", sealed)
	require.NoError(t, err)
	require.Contains(t, inspect, "Label:  release")
	require.Contains(t, inspect, "alice")

	approved, _, err := run(t, dir, "envelope", "approve", "--envelope", sealed, "--key-name", "bob")
	require.NoError(t, err)
	approved = strings.TrimSpace(approved)

	path := filepath.Join(t.TempDir(), "release.env")
	require.NoError(t, os.WriteFile(path, []byte(approved), 0o644))

	t.Run("threshold met", func(t *testing.T) {
		stdout, _, err := run(t, dir, "verify", "--envelope-file", path, "--message", msg, "--threshold", "2", "--expected-key", strings.TrimSpace(bobPub))
		require.NoError(t, err)
		require.Contains(t, stdout, "Envelope: ✓ valid")
		require.Contains(t, stdout, "Expected key: matches")
	})

	t.Run("threshold not met", func(t *testing.T) {
		stdout, _, err := run(t, dir, "verify", "--envelope", sealed, "--message", msg, "--threshold", "2")
		require.ErrorIs(t, err, errVerificationFailed)
		require.Contains(t, stdout, "only 1 of 2")
	})

	t.Run("wrong message", func(t *testing.T) {
		_, _, err := run(t, dir, "verify", "--envelope", approved, "--message", "other")
		require.ErrorIs(t, err, errVerificationFailed)
	})

	t.Run("json inspect", func(t *testing.T) {
		stdout, _, err := run(t, dir, "--output", "json", "envelope", "inspect", "--envelope-file", path)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		require.Equal(t, "release", out["label"])
		require.Len(t, out["approvals"], 2)
	})

	t.Run("both sources rejected", func(t *testing.T) {
		_, _, err := run(t, dir, "envelope", "inspect", "--envelope", sealed, "--envelope-file", path)
		require.Error(t, err)
	})
}

func TestBackendAndConfig(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := run(t, dir, "backend")
	require.NoError(t, err)
	require.Equal(t, p256.Backend()+"\n", stdout)

	logPath := filepath.Join(dir, "p256.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "logger:\n  logLevel: debug\n  logType: file\n  filePath: " + logPath + "\noutput:\n  format: json\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	stdout, _, err = run(t, dir, "--config", cfgPath, "backend")
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Equal(t, p256.Backend(), out["backend"])

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(logged), "configuration loaded")

	t.Run("invalid settings", func(t *testing.T) {
		_, _, err := run(t, dir, "--log-level", "loud", "backend")
		require.Error(t, err)
	})
}
