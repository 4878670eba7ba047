//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256/verify"
)

// ConvertSignatureCommand creates the convert-signature command
func ConvertSignatureCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert-signature",
		Usage: "Convert a signature between raw r||s and DER",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "signature",
				Usage:    "Signature as hex, raw r||s or DER",
				Required: true,
			},
		},
		Action: runConvertSignatureCommand,
	}
}

type convertOutput struct {
	Input string `json:"input"`
	R     string `json:"r"`
	S     string `json:"s"`
	Raw   string `json:"raw"`
	DER   string `json:"der"`
}

func runConvertSignatureCommand(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)

	sig, format, err := verify.ParseSignature(cmd.String("signature"))
	if err != nil {
		return err
	}

	r, s, raw := sig.R(), sig.S(), sig.Bytes()
	out := convertOutput{
		Input: format,
		R:     hex.EncodeToString(r[:]),
		S:     hex.EncodeToString(s[:]),
		Raw:   hex.EncodeToString(raw[:]),
		DER:   hex.EncodeToString(sig.DER()),
	}
	text := fmt.Sprintf("Input: %s\nRaw:   %s\nDER:   %s\n", out.Input, out.Raw, out.DER)
	return emit(cmd, app, out, text)
}
