//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/keys"
)

// KeygenCommand creates the keygen command
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate a new P-256 keypair",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Store the keypair in the key directory under this name",
			},
			&cli.StringFlag{
				Name:  "cose-out",
				Usage: "Write the secret key as a CBOR COSE_Key to this path",
			},
			&cli.BoolFlag{
				Name:  "print-secret",
				Usage: "Print the secret key to stdout",
			},
		},
		Action: runKeygenCommand,
	}
}

type keygenOutput struct {
	Name      string `json:"name,omitempty"`
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey,omitempty"`
}

func runKeygenCommand(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)
	name := cmd.String("name")
	coseOut := cmd.String("cose-out")
	printSecret := cmd.Bool("print-secret")

	if name == "" && coseOut == "" && !printSecret {
		return errors.New("the secret key would be discarded: pass --name, --cose-out or --print-secret")
	}

	kp, err := p256.GenerateKeypair(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate keypair: %w", err)
	}
	defer kp.Zeroize()

	if name != "" {
		if err := app.store.Save(name, kp); err != nil {
			return fmt.Errorf("failed to save key: %w", err)
		}
		app.log.Info("saved keypair", "name", name, "dir", app.store.Dir)
		fmt.Fprintf(errWriter(cmd), "✓ Saved key %q to %s\n", name, app.store.Dir)
	}

	if coseOut != "" {
		data, err := keys.MarshalCOSESecretKey(kp.Secret)
		if err != nil {
			return err
		}
		err = os.WriteFile(coseOut, data, 0o600)
		clear(data)
		if err != nil {
			return fmt.Errorf("failed to write COSE key: %w", err)
		}
		fmt.Fprintf(errWriter(cmd), "✓ Wrote COSE key to %s\n", coseOut)
	}

	c := kp.Public.CompressedBytes()
	out := keygenOutput{Name: name, PublicKey: hex.EncodeToString(c[:])}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Public Key: %s\n", out.PublicKey)
	if printSecret {
		d := kp.Secret.Bytes()
		out.SecretKey = hex.EncodeToString(d[:])
		clear(d[:])
		fmt.Fprintf(&sb, "Secret Key: %s\n", out.SecretKey)
	}
	return emit(cmd, app, out, sb.String())
}

// ListKeysCommand creates the list-keys command
func ListKeysCommand() *cli.Command {
	return &cli.Command{
		Name:   "list-keys",
		Usage:  "List keys in the key directory",
		Action: runListKeysCommand,
	}
}

type listedKey struct {
	Name      string `json:"name"`
	PublicKey string `json:"publicKey,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runListKeysCommand(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)
	names, err := app.store.List()
	if err != nil {
		return err
	}

	listed := make([]listedKey, 0, len(names))
	var sb strings.Builder
	for _, name := range names {
		k := listedKey{Name: name}
		pub, err := app.store.LoadPublicKey(name)
		if err != nil {
			k.Error = err.Error()
			fmt.Fprintf(&sb, "%s\t✗ %s\n", name, k.Error)
		} else {
			c := pub.CompressedBytes()
			k.PublicKey = hex.EncodeToString(c[:])
			fmt.Fprintf(&sb, "%s\t%s\n", name, k.PublicKey)
		}
		listed = append(listed, k)
	}
	return emit(cmd, app, listed, sb.String())
}
