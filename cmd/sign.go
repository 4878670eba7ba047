//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/envelope"
)

// SignCommand creates the sign command
func SignCommand() *cli.Command {
	flags := append(secretKeyFlags(), messageFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "der",
			Usage: "Print the signature DER-encoded instead of raw r||s",
		},
		&cli.BoolFlag{
			Name:  "envelope",
			Usage: "Wrap the message digest and signature in a signed envelope",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "Envelope payload label",
		},
		&cli.StringFlag{
			Name:  "alias",
			Usage: "Envelope member alias (defaults to --key-name)",
		},
		&cli.IntFlag{
			Name:  "max-draws",
			Usage: "Fail after this many total nonce draws (0 means unlimited)",
		},
	)

	return &cli.Command{
		Name:   "sign",
		Usage:  "Sign a message or digest with ECDSA P-256",
		Flags:  flags,
		Action: runSignCommand,
	}
}

type signOutput struct {
	PublicKey string `json:"publicKey"`
	Digest    string `json:"digest"`
	Signature string `json:"signature"`
	DER       string `json:"signatureDer"`
}

func runSignCommand(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)

	sk, err := loadSecretKey(ctx, cmd, app)
	if err != nil {
		return err
	}
	defer sk.Zeroize()

	var rng io.Reader = rand.Reader
	if n := cmd.Int("max-draws"); n > 0 {
		rng = p256.NewBoundedReader(rng, n)
	}

	if cmd.Bool("envelope") {
		return signEnvelope(cmd, app, sk, rng)
	}

	digest, ok, err := readDigest(cmd)
	if err != nil {
		return err
	}
	if !ok {
		if !cmd.IsSet("message") && !cmd.IsSet("message-file") {
			return errors.New("one of --message, --message-file or --digest is required")
		}
		msg, err := readMessage(cmd)
		if err != nil {
			return err
		}
		digest = p256.Sum256(msg)
	}

	sig, err := sk.SignPrehashed(digest, rng)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	app.log.Debug("signed digest", "digest", hex.EncodeToString(digest[:]), "backend", p256.Backend())

	c := sk.PublicKey().CompressedBytes()
	raw := sig.Bytes()
	out := signOutput{
		PublicKey: hex.EncodeToString(c[:]),
		Digest:    hex.EncodeToString(digest[:]),
		Signature: hex.EncodeToString(raw[:]),
		DER:       hex.EncodeToString(sig.DER()),
	}
	text := out.Signature
	if cmd.Bool("der") {
		text = out.DER
	}
	return emit(cmd, app, out, text+"\n")
}

func signEnvelope(cmd *cli.Command, app *appContext, sk *p256.SecretKey, rng io.Reader) error {
	if cmd.IsSet("digest") {
		return errors.New("--envelope signs a message; --digest is not accepted")
	}
	if !cmd.IsSet("message") && !cmd.IsSet("message-file") {
		return errors.New("one of --message or --message-file is required")
	}
	msg, err := readMessage(cmd)
	if err != nil {
		return err
	}

	alias := cmd.String("alias")
	if alias == "" {
		alias = cmd.String("key-name")
	}

	env, err := envelope.Seal(cmd.String("label"), msg, alias, sk, rng)
	if err != nil {
		return fmt.Errorf("failed to seal envelope: %w", err)
	}
	return printEnvelope(cmd, app, env)
}

type envelopeOutput struct {
	Envelope string           `json:"envelope"`
	Hash     string           `json:"hash"`
	Label    string           `json:"label"`
	Digest   string           `json:"digest"`
	Members  []map[string]any `json:"approvals"`
}

func printEnvelope(cmd *cli.Command, app *appContext, env *envelope.Envelope) error {
	raw, err := env.Encode()
	if err != nil {
		return err
	}
	encoded, err := env.EncodeBase64()
	if err != nil {
		return err
	}

	out := envelopeOutput{
		Envelope: encoded,
		Hash:     envelope.ComputeHash(raw),
		Label:    env.Payload.Label,
		Digest:   hex.EncodeToString(env.Payload.Digest[:]),
		Members:  app.formatter.FormatApprovals(env.Approvals),
	}
	app.log.Info("envelope ready", "hash", out.Hash, "approvals", len(env.Approvals))
	fmt.Fprintf(errWriter(cmd), "✓ Envelope %s has %d approval(s)\n", out.Hash, len(env.Approvals))
	return emit(cmd, app, out, strings.TrimSpace(encoded)+"\n")
}
