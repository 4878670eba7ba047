//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256/verify"
)

// AgreeCommand creates the agree command
func AgreeCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:     "peer",
			Usage:    "Peer public key as hex",
			Required: true,
		},
	}, secretKeyFlags()...)

	return &cli.Command{
		Name:   "agree",
		Usage:  "Compute an ECDH shared secret with a peer public key",
		Flags:  flags,
		Action: runAgreeCommand,
	}
}

func runAgreeCommand(ctx context.Context, cmd *cli.Command) error {
	app := fromContext(ctx)

	peer, err := verify.ParsePublicKey(cmd.String("peer"))
	if err != nil {
		return fmt.Errorf("invalid peer key: %w", err)
	}

	sk, err := loadSecretKey(ctx, cmd, app)
	if err != nil {
		return err
	}
	defer sk.Zeroize()

	shared := sk.Agree(peer)
	defer shared.Zeroize()

	out := map[string]string{"sharedSecret": hex.EncodeToString(shared.Bytes())}
	return emit(cmd, app, out, out["sharedSecret"]+"\n")
}
