//go:build !purego && !tinygo && (amd64 || arm64 || arm || 386)

package p256

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anchorageoss/p256/internal/engine/optimized"
)

func TestBackend(t *testing.T) {
	assert.Equal(t, optimized.Name, Backend())
}
