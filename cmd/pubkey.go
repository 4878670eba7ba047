//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/keys"
	"github.com/anchorageoss/p256/verify"
)

// Public key output formats
const (
	formatCompressed   = "compressed"
	formatUncompressed = "uncompressed"
	formatUntagged     = "untagged"
	formatCOSE         = "cose"
)

// PubkeyCommand creates the pubkey command
func PubkeyCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:  "public",
			Usage: "Public key as hex (compressed, uncompressed, untagged or COSE_Key)",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output encoding: compressed, uncompressed, untagged or cose",
			Value: formatCompressed,
		},
	}, secretKeyFlags()...)

	return &cli.Command{
		Name:   "pubkey",
		Usage:  "Derive or re-encode a public key",
		Flags:  flags,
		Action: runPubkeyCommand,
	}
}

type pubkeyOutput struct {
	Compressed   string `json:"compressed"`
	Uncompressed string `json:"uncompressed"`
	Untagged     string `json:"untagged"`
	COSE         string `json:"cose"`
}

func runPubkeyCommand(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)

	pub, err := resolvePublicKey(ctx, cmd, app)
	if err != nil {
		return err
	}

	out, err := encodePublicKey(pub)
	if err != nil {
		return err
	}

	var text string
	switch format := cmd.String("format"); format {
	case formatCompressed:
		text = out.Compressed
	case formatUncompressed:
		text = out.Uncompressed
	case formatUntagged:
		text = out.Untagged
	case formatCOSE:
		text = out.COSE
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return emit(cmd, app, out, text+"\n")
}

func resolvePublicKey(ctx context.Context, cmd *cli.Command, app *appContext) (*p256.PublicKey, error) {
	if s := cmd.String("public"); s != "" {
		return verify.ParsePublicKey(s)
	}
	if name := cmd.String("key-name"); name != "" {
		return app.store.LoadPublicKey(name)
	}
	sk, err := loadSecretKey(ctx, cmd, app)
	if err != nil {
		if errors.Is(err, errNoKey) {
			return nil, errors.New("--public or a secret key source is required")
		}
		return nil, err
	}
	defer sk.Zeroize()
	return sk.PublicKey(), nil
}

func encodePublicKey(pub *p256.PublicKey) (*pubkeyOutput, error) {
	c := pub.CompressedBytes()
	u := pub.UncompressedBytes()
	t := pub.UntaggedBytes()
	cose, err := keys.MarshalCOSEPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &pubkeyOutput{
		Compressed:   hex.EncodeToString(c[:]),
		Uncompressed: hex.EncodeToString(u[:]),
		Untagged:     hex.EncodeToString(t[:]),
		COSE:         hex.EncodeToString(cose),
	}, nil
}
