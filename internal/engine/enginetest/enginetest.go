// Package enginetest is a conformance suite every engine.Engine must pass.
package enginetest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorageoss/p256/internal/engine"
)

// Fixed vectors shared by the engine tests.
const (
	SecretKey1 = "519b423d715f8b581f4fa8ee59f4771a5b44c8130b4e3eacca54a56dda72b464"
	PublicX1   = "1ccbe91c075fc7f4f033bfa248db8fccd3565de94bbfb12f3c59ff46c271bf83"
	PublicY1   = "ce4014c68811f9a21a1fdb2c0e6113e06db7ca93b7404e78dc7ccd5ca89a4ca9"

	SecretKey2 = "fb5469bfaac8eb74c32905fc92b50dba9f6660cdcd42df9e120ba0c6bbe00409"
	PublicX2   = "d717e98cbb77382563fac7530c4c10d6d608af29837c051e3c191243b1c290df"
	PublicY2   = "036d562ded21bb3753ad134660d9eb13a66c175e13f4555659916e78316de430"

	// x-coordinate of SecretKey1 * PublicKey2.
	SharedX = "c8e52022670c8e9a9468d1541a078c61f66a793ab95e61de0133843153e264f2"

	Digest = "44acf6b7e36c1342c2c5897204fe09504e1e2efb1a900377dbc4e7a6a133ec56"
	Nonce  = "94a1bbb14b906a61a280f245f9e93c7f3b4a6247824f5d33b9670787642a68de"
	SigR   = "f3ac8061b514795b8843e3d6629527ed2afd6b1f6a555a7acabb5e6f79c8c2ac"
	SigS   = "8bf77819ca05a6b2786c76262bf7371cef97b218e96f175a3ccdda2acc058903"

	OrderMinusOne = "ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632550"
)

// Bytes32 decodes a 64-character hex string.
func Bytes32(t testing.TB, s string) [32]byte {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, raw, 32)
	return [32]byte(raw)
}

// Words decodes a 64-character hex string into the native layout.
func Words(t testing.TB, s string) engine.Words {
	t.Helper()
	return fromBytes(Bytes32(t, s))
}

func fromBytes(b [32]byte) engine.Words {
	var w engine.Words
	w.SetBytes(&b)
	return w
}

// Run exercises every method of e against the fixed vectors and a reference
// implementation.
func Run(t *testing.T, e engine.Engine) {
	t.Run("CheckRangeN", func(t *testing.T) { testCheckRangeN(t, e) })
	t.Run("Keygen", func(t *testing.T) { testKeygen(t, e) })
	t.Run("DecodePoint", func(t *testing.T) { testDecodePoint(t, e) })
	t.Run("Sign", func(t *testing.T) { testSign(t, e) })
	t.Run("Verify", func(t *testing.T) { testVerify(t, e) })
	t.Run("ECDH", func(t *testing.T) { testECDH(t, e) })
	t.Run("Reference", func(t *testing.T) { testReference(t, e) })
}

func testCheckRangeN(t *testing.T, e engine.Engine) {
	orderPlusOne := engine.Order
	orderPlusOne[31]++

	tests := []struct {
		name string
		in   engine.Words
		want bool
	}{
		{"zero", engine.Words{}, false},
		{"one", engine.Words{1}, true},
		{"n-1", Words(t, OrderMinusOne), true},
		{"n", fromBytes(engine.Order), false},
		{"n+1", fromBytes(orderPlusOne), false},
		{"all ones", engine.Words{^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0)}, false},
		{"secret key", Words(t, SecretKey1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.CheckRangeN(&tt.in))
		})
	}
}

func testKeygen(t *testing.T, e engine.Engine) {
	tests := []struct {
		name   string
		secret string
		x, y   string
	}{
		{"key 1", SecretKey1, PublicX1, PublicY1},
		{"key 2", SecretKey2, PublicX2, PublicY2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Words(t, tt.secret)
			var x, y engine.Words
			require.True(t, e.Keygen(&x, &y, &d))
			assert.Equal(t, Words(t, tt.x), x)
			assert.Equal(t, Words(t, tt.y), y)
		})
	}

	t.Run("rejects zero", func(t *testing.T) {
		var x, y, d engine.Words
		assert.False(t, e.Keygen(&x, &y, &d))
	})

	t.Run("rejects order", func(t *testing.T) {
		var x, y engine.Words
		d := fromBytes(engine.Order)
		assert.False(t, e.Keygen(&x, &y, &d))
	})
}

func testDecodePoint(t *testing.T, e engine.Engine) {
	x1, y1 := Bytes32(t, PublicX1), Bytes32(t, PublicY1)
	x2, y2 := Bytes32(t, PublicX2), Bytes32(t, PublicY2)

	uncompressed := append(append([]byte{0x04}, x1[:]...), y1[:]...)
	compressedOdd := append([]byte{0x03}, x1[:]...)
	compressedEven := append([]byte{0x02}, x2[:]...)

	offCurve := append([]byte(nil), uncompressed...)
	offCurve[64] ^= 0x01

	// x = 1 has no square root on the curve.
	noRoot := make([]byte, 33)
	noRoot[0], noRoot[32] = 0x02, 0x01

	wrongParity := append([]byte(nil), compressedOdd...)
	wrongParity[0] = 0x02

	valid := []struct {
		name string
		in   []byte
		x, y [32]byte
	}{
		{"uncompressed", uncompressed, x1, y1},
		{"compressed odd", compressedOdd, x1, y1},
		{"compressed even", compressedEven, x2, y2},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			var x, y engine.Words
			require.True(t, e.DecodePoint(&x, &y, tt.in))
			assert.Equal(t, tt.x, x.Bytes())
			assert.Equal(t, tt.y, y.Bytes())
		})
	}

	t.Run("wrong parity selects the negated point", func(t *testing.T) {
		var x, y engine.Words
		require.True(t, e.DecodePoint(&x, &y, wrongParity))
		assert.Equal(t, x1, x.Bytes())
		assert.NotEqual(t, y1, y.Bytes())
		assert.False(t, y.IsOdd())
	})

	invalid := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"identity", []byte{0x00}},
		{"off curve", offCurve},
		{"no square root", noRoot},
		{"bad tag", append([]byte{0x05}, uncompressed[1:]...)},
		{"tag length mismatch", append([]byte{0x04}, x1[:]...)},
		{"truncated", uncompressed[:64]},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			var x, y engine.Words
			assert.False(t, e.DecodePoint(&x, &y, tt.in))
		})
	}
}

func testSign(t *testing.T, e engine.Engine) {
	d := Words(t, SecretKey1)
	k := Words(t, Nonce)
	digest := Bytes32(t, Digest)

	t.Run("fixed nonce vector", func(t *testing.T) {
		var r, s engine.Words
		require.True(t, e.Sign(&r, &s, &digest, &d, &k))
		assert.Equal(t, Words(t, SigR), r)
		assert.Equal(t, Words(t, SigS), s)
	})

	t.Run("rejects zero nonce", func(t *testing.T) {
		var r, s, zero engine.Words
		assert.False(t, e.Sign(&r, &s, &digest, &d, &zero))
	})

	t.Run("rejects zero secret", func(t *testing.T) {
		var r, s, zero engine.Words
		assert.False(t, e.Sign(&r, &s, &digest, &zero, &k))
	})
}

func testVerify(t *testing.T, e engine.Engine) {
	x, y := Words(t, PublicX1), Words(t, PublicY1)
	r, s := Words(t, SigR), Words(t, SigS)
	digest := Bytes32(t, Digest)

	assert.True(t, e.Verify(&x, &y, &digest, &r, &s))

	t.Run("flipped digest bit", func(t *testing.T) {
		bad := digest
		bad[0] ^= 0x80
		assert.False(t, e.Verify(&x, &y, &bad, &r, &s))
	})

	t.Run("flipped r bit", func(t *testing.T) {
		bad := r
		bad[3] ^= 0x10
		assert.False(t, e.Verify(&x, &y, &digest, &bad, &s))
	})

	t.Run("flipped s bit", func(t *testing.T) {
		bad := s
		bad[0] ^= 0x01
		assert.False(t, e.Verify(&x, &y, &digest, &r, &bad))
	})

	t.Run("wrong key", func(t *testing.T) {
		x2, y2 := Words(t, PublicX2), Words(t, PublicY2)
		assert.False(t, e.Verify(&x2, &y2, &digest, &r, &s))
	})

	t.Run("zero r", func(t *testing.T) {
		var zero engine.Words
		assert.False(t, e.Verify(&x, &y, &digest, &zero, &s))
	})

	t.Run("s equal to order", func(t *testing.T) {
		bad := fromBytes(engine.Order)
		assert.False(t, e.Verify(&x, &y, &digest, &r, &bad))
	})
}

func testECDH(t *testing.T, e engine.Engine) {
	d1, d2 := Words(t, SecretKey1), Words(t, SecretKey2)
	x1, y1 := Words(t, PublicX1), Words(t, PublicY1)
	x2, y2 := Words(t, PublicX2), Words(t, PublicY2)

	var ab, ba [32]byte
	require.True(t, e.ECDH(&ab, &d1, &x2, &y2))
	require.True(t, e.ECDH(&ba, &d2, &x1, &y1))

	assert.Equal(t, Bytes32(t, SharedX), ab)
	assert.Equal(t, ab, ba)

	t.Run("rejects zero secret", func(t *testing.T) {
		var out [32]byte
		var zero engine.Words
		assert.False(t, e.ECDH(&out, &zero, &x2, &y2))
	})
}

// testReference cross-checks random keys and signatures against crypto/ecdsa.
func testReference(t *testing.T, e engine.Engine) {
	for i := 0; i < 8; i++ {
		ref, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		var db [32]byte
		ref.D.FillBytes(db[:])
		d := fromBytes(db)

		var x, y engine.Words
		require.True(t, e.Keygen(&x, &y, &d))
		assert.Equal(t, 0, new(big.Int).SetBytes(wordBytes(&x)).Cmp(ref.X))
		assert.Equal(t, 0, new(big.Int).SetBytes(wordBytes(&y)).Cmp(ref.Y))

		var digest [32]byte
		_, err = rand.Read(digest[:])
		require.NoError(t, err)

		var kb [32]byte
		_, err = rand.Read(kb[:])
		require.NoError(t, err)
		k := fromBytes(kb)
		if !e.CheckRangeN(&k) {
			continue
		}

		var r, s engine.Words
		require.True(t, e.Sign(&r, &s, &digest, &d, &k))
		rb, sb := r.Bytes(), s.Bytes()
		assert.True(t, ecdsa.Verify(&ref.PublicKey, digest[:], new(big.Int).SetBytes(rb[:]), new(big.Int).SetBytes(sb[:])))

		refR, refS, err := ecdsa.Sign(rand.Reader, ref, digest[:])
		require.NoError(t, err)
		var rw, sw engine.Words
		fromBig(&rw, refR)
		fromBig(&sw, refS)
		assert.True(t, e.Verify(&x, &y, &digest, &rw, &sw))
	}
}

func wordBytes(w *engine.Words) []byte {
	b := w.Bytes()
	return b[:]
}

func fromBig(w *engine.Words, v *big.Int) {
	var b [32]byte
	v.FillBytes(b[:])
	w.SetBytes(&b)
}
