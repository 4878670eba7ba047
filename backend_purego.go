//go:build purego || tinygo || !(amd64 || arm64 || arm || 386)

package p256

import (
	"github.com/anchorageoss/p256/internal/engine"
	"github.com/anchorageoss/p256/internal/engine/portable"
)

func newEngine() engine.Engine {
	return portable.Engine{}
}
