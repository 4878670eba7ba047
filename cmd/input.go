//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/keys"
)

var errNoKey = errors.New("one of --key-name, --secret-hex or --cose-key is required")

func secretKeyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "key-name",
			Usage: "Name of a key in the key directory",
		},
		&cli.StringFlag{
			Name:    "secret-hex",
			Usage:   "Secret scalar as 64 hex characters",
			Sources: cli.EnvVars("P256_SECRET_KEY"),
		},
		&cli.StringFlag{
			Name:  "cose-key",
			Usage: "Path to a CBOR COSE_Key file holding a secret key",
		},
	}
}

func messageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "message",
			Usage: "Message text",
		},
		&cli.StringFlag{
			Name:  "message-file",
			Usage: "Path to the message, or - for stdin",
		},
		&cli.StringFlag{
			Name:  "digest",
			Usage: "Precomputed 32-byte SHA-256 digest as hex",
		},
	}
}

// keyProvider picks the secret key source named on the command line.
func keyProvider(cmd *cli.Command, app *appContext) (keys.KeyProvider, error) {
	switch {
	case cmd.String("key-name") != "":
		return &keys.FileKeyProvider{Store: app.store, KeyName: cmd.String("key-name")}, nil
	case cmd.String("secret-hex") != "":
		raw, err := decodeHex(cmd.String("secret-hex"))
		if err != nil {
			return nil, fmt.Errorf("failed to decode secret key: %w", err)
		}
		sk, err := p256.NewSecretKey(raw)
		clear(raw)
		if err != nil {
			return nil, err
		}
		return &keys.MemoryKeyProvider{Key: sk}, nil
	case cmd.String("cose-key") != "":
		data, err := os.ReadFile(cmd.String("cose-key"))
		if err != nil {
			return nil, fmt.Errorf("failed to read COSE key: %w", err)
		}
		_, sk, err := keys.ParseCOSEKey(data)
		if err != nil {
			return nil, err
		}
		if sk == nil {
			return nil, fmt.Errorf("%s holds no secret key", cmd.String("cose-key"))
		}
		return &keys.MemoryKeyProvider{Key: sk}, nil
	}
	return nil, errNoKey
}

func loadSecretKey(ctx context.Context, cmd *cli.Command, app *appContext) (*p256.SecretKey, error) {
	provider, err := keyProvider(cmd, app)
	if err != nil {
		return nil, err
	}
	return provider.GetSecretKey(ctx)
}

// readMessage returns the message bytes from --message or --message-file.
func readMessage(cmd *cli.Command) ([]byte, error) {
	if cmd.IsSet("message") {
		return []byte(cmd.String("message")), nil
	}
	path := cmd.String("message-file")
	if path == "" {
		return nil, nil
	}
	if path == "-" {
		in := cmd.Root().Reader
		if in == nil {
			in = os.Stdin
		}
		return io.ReadAll(in)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read message file: %w", err)
	}
	return data, nil
}

func readDigest(cmd *cli.Command) ([32]byte, bool, error) {
	var digest [32]byte
	s := cmd.String("digest")
	if s == "" {
		return digest, false, nil
	}
	raw, err := decodeHex(s)
	if err != nil {
		return digest, false, fmt.Errorf("failed to decode digest: %w", err)
	}
	if len(raw) != len(digest) {
		return digest, false, fmt.Errorf("digest must be 32 bytes, got %d", len(raw))
	}
	copy(digest[:], raw)
	return digest, true, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}
