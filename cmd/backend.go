//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256"
)

// BackendCommand creates the backend command
func BackendCommand() *cli.Command {
	return &cli.Command{
		Name:  "backend",
		Usage: "Print the arithmetic engine this binary was built with",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app := fromContext(ctx)
			return emit(cmd, app, map[string]string{"backend": p256.Backend()}, p256.Backend()+"\n")
		},
	}
}
