package p256

import "github.com/anchorageoss/p256/internal/engine"

// arith is fixed at build time by backend_optimized.go or backend_purego.go.
var arith engine.Engine = newEngine()

// Backend returns the name of the arithmetic engine linked into this build.
func Backend() string {
	return arith.Name()
}
