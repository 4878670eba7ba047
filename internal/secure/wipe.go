// Package secure holds the helpers used to clear transient secret material.
package secure

import "runtime"

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// Wipe32 overwrites a fixed 32-byte buffer with zeros.
func Wipe32(b *[32]byte) {
	Wipe(b[:])
}
