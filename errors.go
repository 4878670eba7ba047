package p256

import "errors"

// ErrInvalidEncoding is returned by every decoding function when the input
// has the wrong length, an unknown tag, a scalar outside [1, n-1] or a point
// that is not on the curve.
var ErrInvalidEncoding = errors.New("p256: invalid encoding")

// ErrDrawLimit is returned by a reader from NewBoundedReader once its draw
// limit is reached.
var ErrDrawLimit = errors.New("p256: randomness draw limit reached")
