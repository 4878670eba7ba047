//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256/envelope"
)

// EnvelopeCommand creates the envelope command and its subcommands
func EnvelopeCommand() *cli.Command {
	source := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:  "envelope",
				Usage: "Base64-encoded signed envelope",
			},
			&cli.StringFlag{
				Name:  "envelope-file",
				Usage: "Path to a signed envelope, raw or base64",
			},
		}
	}

	approveFlags := append(source(), secretKeyFlags()...)
	approveFlags = append(approveFlags, &cli.StringFlag{
		Name:  "alias",
		Usage: "Member alias (defaults to --key-name)",
	})

	return &cli.Command{
		Name:  "envelope",
		Usage: "Inspect or co-sign signed envelopes",
		Commands: []*cli.Command{
			{
				Name:   "inspect",
				Usage:  "Print the contents of an envelope",
				Flags:  source(),
				Action: runEnvelopeInspect,
			},
			{
				Name:   "approve",
				Usage:  "Add an approval to an existing envelope",
				Flags:  approveFlags,
				Action: runEnvelopeApprove,
			},
		},
	}
}

func loadEnvelopeFlag(cmd *cli.Command) (*envelope.Envelope, error) {
	b64, path := cmd.String("envelope"), cmd.String("envelope-file")
	switch {
	case b64 != "" && path != "":
		return nil, errors.New("provide either --envelope or --envelope-file, not both")
	case b64 != "":
		return envelope.DecodeBase64(b64)
	case path != "":
		return envelope.DecodeFile(path)
	}
	return nil, errors.New("one of --envelope or --envelope-file is required")
}

func runEnvelopeInspect(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)

	env, err := loadEnvelopeFlag(cmd)
	if err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	raw, err := env.Encode()
	if err != nil {
		return err
	}

	out := map[string]any{
		"version":   env.Version,
		"label":     env.Payload.Label,
		"digest":    fmt.Sprintf("%x", env.Payload.Digest[:]),
		"hash":      envelope.ComputeHash(raw),
		"approvals": app.formatter.FormatApprovals(env.Approvals),
	}
	return emit(cmd, app, out, app.formatter.FormatEnvelope(env))
}

func runEnvelopeApprove(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)

	env, err := loadEnvelopeFlag(cmd)
	if err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	sk, err := loadSecretKey(ctx, cmd, app)
	if err != nil {
		return err
	}
	defer sk.Zeroize()

	alias := cmd.String("alias")
	if alias == "" {
		alias = cmd.String("key-name")
	}
	if err := env.Approve(alias, sk, rand.Reader); err != nil {
		return fmt.Errorf("failed to approve envelope: %w", err)
	}
	return printEnvelope(cmd, app, env)
}
