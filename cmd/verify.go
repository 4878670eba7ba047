//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256/verify"
)

var errVerificationFailed = errors.New("verification failed")

// VerifyCommand creates the verify command
func VerifyCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "public-key",
			Usage: "Signer public key as hex",
		},
		&cli.StringFlag{
			Name:  "signature",
			Usage: "Signature as hex, raw r||s or DER",
		},
		&cli.StringFlag{
			Name:  "envelope",
			Usage: "Base64-encoded signed envelope",
		},
		&cli.StringFlag{
			Name:  "envelope-file",
			Usage: "Path to a signed envelope, raw or base64",
		},
		&cli.IntFlag{
			Name:  "threshold",
			Usage: "Number of distinct valid approvals an envelope needs",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "expected-key",
			Usage: "Public key that must be among the envelope approvers",
		},
	}
	flags = append(flags, messageFlags()...)

	return &cli.Command{
		Name:   "verify",
		Usage:  "Verify an ECDSA P-256 signature or a signed envelope",
		Flags:  flags,
		Action: runVerifyCommand,
	}
}

func runVerifyCommand(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)
	service := verify.NewService(app.log)

	msg, err := readMessage(cmd)
	if err != nil {
		return err
	}

	if cmd.String("envelope") != "" || cmd.String("envelope-file") != "" {
		if cmd.IsSet("digest") {
			return errors.New("--digest cannot be used with an envelope")
		}
		result, err := service.VerifyEnvelope(ctx, &verify.EnvelopeRequest{
			EnvelopeB64:          cmd.String("envelope"),
			EnvelopePath:         cmd.String("envelope-file"),
			Message:              msg,
			ExpectedPublicKeyHex: cmd.String("expected-key"),
			Threshold:            cmd.Int("threshold"),
		})
		if err != nil {
			return fmt.Errorf("envelope verification error: %w", err)
		}
		if err := emit(cmd, app, result, app.formatter.FormatEnvelopeResult(result)); err != nil {
			return err
		}
		if !result.Valid {
			return errVerificationFailed
		}
		return nil
	}

	if cmd.String("public-key") == "" || cmd.String("signature") == "" {
		return errors.New("--public-key and --signature are required unless an envelope is given")
	}
	if cmd.IsSet("digest") && msg != nil {
		return errors.New("provide either a message or --digest, not both")
	}

	result, err := service.VerifySignature(ctx, &verify.SignatureRequest{
		PublicKeyHex: cmd.String("public-key"),
		SignatureHex: cmd.String("signature"),
		Message:      msg,
		DigestHex:    cmd.String("digest"),
	})
	if err != nil {
		return fmt.Errorf("signature verification error: %w", err)
	}
	if err := emit(cmd, app, result, app.formatter.FormatSignatureResult(result)); err != nil {
		return err
	}
	if !result.Valid {
		return errVerificationFailed
	}
	return nil
}
