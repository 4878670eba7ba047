package p256

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/anchorageoss/p256/internal/engine"
	"github.com/anchorageoss/p256/internal/secure"
)

// sampleScalar draws 32-byte candidates from r until one lies in [1, n-1].
// The loop has no retry cap; a reader that never yields an in-range value
// blocks forever. Wrap it with NewBoundedReader to bound the work.
func sampleScalar(r io.Reader, out *engine.Words) error {
	if r == nil {
		r = rand.Reader
	}

	var buf [32]byte
	defer secure.Wipe32(&buf)

	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			out.Clear()
			return fmt.Errorf("p256: reading randomness: %w", err)
		}
		out.SetBytes(&buf)
		secure.Wipe32(&buf)
		if arith.CheckRangeN(out) {
			return nil
		}
		out.Clear()
	}
}

// NewBoundedReader wraps r so that at most maxDraws 32-byte candidates can be
// read from it. Once they are used up every read fails with ErrDrawLimit,
// which makes key generation and signing return an error instead of looping.
//
// Use it on targets that need a hard termination guarantee. With a healthy
// source the first draw is accepted with probability above 1 - 2^-32, so a
// limit of a few draws per operation is plenty.
func NewBoundedReader(r io.Reader, maxDraws int) io.Reader {
	if r == nil {
		r = rand.Reader
	}
	return &boundedReader{r: r, remaining: int64(maxDraws) * 32}
}

type boundedReader struct {
	r         io.Reader
	remaining int64
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		return 0, ErrDrawLimit
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	return n, err
}
