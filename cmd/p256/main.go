//go:build !p256_noder && !p256_noprehash

package main

import (
	"context"
	"log"
	"os"

	"github.com/anchorageoss/p256/cmd"
)

func main() {
	if err := cmd.App().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
