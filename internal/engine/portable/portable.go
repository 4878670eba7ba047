// Package portable implements engine.Engine on Go's general-purpose elliptic
// curve packages. It builds everywhere, including TinyGo, and is selected
// with the purego or tinygo build tags or on architectures the optimized
// engine does not support.
package portable

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"

	"github.com/anchorageoss/p256/internal/engine"
	"github.com/anchorageoss/p256/internal/secure"
)

// Name is reported by Engine.Name.
const Name = "portable"

var (
	curve = elliptic.P256()
	n     = new(big.Int).SetBytes(engine.Order[:])
)

// Engine is stateless; the zero value is ready to use.
type Engine struct{}

var _ engine.Engine = Engine{}

func (Engine) Name() string { return Name }

func (Engine) CheckRangeN(k *engine.Words) bool {
	kInt := toInt(k)
	defer wipeInt(kInt)
	return inRange(kInt)
}

func (Engine) Keygen(x, y, d *engine.Words) bool {
	db := d.Bytes()
	defer secure.Wipe32(&db)

	// NewPrivateKey rejects zero and values >= n.
	priv, err := ecdh.P256().NewPrivateKey(db[:])
	if err != nil {
		return false
	}
	return splitPoint(x, y, priv.PublicKey().Bytes())
}

func (Engine) DecodePoint(x, y *engine.Words, sec1 []byte) bool {
	switch {
	case len(sec1) == 65 && sec1[0] == 0x04:
		pub, err := ecdh.P256().NewPublicKey(sec1)
		if err != nil {
			return false
		}
		return splitPoint(x, y, pub.Bytes())
	case len(sec1) == 33 && (sec1[0] == 0x02 || sec1[0] == 0x03):
		px, py := elliptic.UnmarshalCompressed(curve, sec1)
		if px == nil {
			return false
		}
		fromInt(x, px)
		fromInt(y, py)
		return true
	default:
		return false
	}
}

func (Engine) Sign(r, s *engine.Words, digest *[32]byte, d, k *engine.Words) bool {
	dInt, kInt := toInt(d), toInt(k)
	defer wipeInt(dInt, kInt)
	if !inRange(dInt) || !inRange(kInt) {
		return false
	}

	kb := k.Bytes()
	defer secure.Wipe32(&kb)

	// x(k*G) is the public key of the ephemeral scalar.
	eph, err := ecdh.P256().NewPrivateKey(kb[:])
	if err != nil {
		return false
	}
	rInt := new(big.Int).SetBytes(eph.PublicKey().Bytes()[1:33])
	rInt.Mod(rInt, n)
	if rInt.Sign() == 0 {
		return false
	}

	e := new(big.Int).SetBytes(digest[:])
	e.Mod(e, n)

	kInv := new(big.Int).ModInverse(kInt, n)
	sInt := new(big.Int).Mul(rInt, dInt)
	defer wipeInt(kInv, sInt)
	sInt.Add(sInt, e)
	sInt.Mul(sInt, kInv)
	sInt.Mod(sInt, n)
	if sInt.Sign() == 0 {
		return false
	}

	fromInt(r, rInt)
	fromInt(s, sInt)
	return true
}

func (Engine) Verify(x, y *engine.Words, digest *[32]byte, r, s *engine.Words) bool {
	pub := &ecdsa.PublicKey{Curve: curve, X: toInt(x), Y: toInt(y)}
	return ecdsa.Verify(pub, digest[:], toInt(r), toInt(s))
}

func (Engine) ECDH(shared *[32]byte, d, x, y *engine.Words) bool {
	db := d.Bytes()
	defer secure.Wipe32(&db)

	priv, err := ecdh.P256().NewPrivateKey(db[:])
	if err != nil {
		return false
	}

	var buf [65]byte
	buf[0] = 0x04
	xb, yb := x.Bytes(), y.Bytes()
	copy(buf[1:33], xb[:])
	copy(buf[33:], yb[:])
	pub, err := ecdh.P256().NewPublicKey(buf[:])
	if err != nil {
		return false
	}

	secret, err := priv.ECDH(pub)
	if err != nil {
		return false
	}
	copy(shared[:], secret)
	secure.Wipe(secret)
	return true
}

func inRange(k *big.Int) bool {
	return k.Sign() > 0 && k.Cmp(n) < 0
}

// wipeInt zeroes the words backing each x.
func wipeInt(xs ...*big.Int) {
	for _, x := range xs {
		if x != nil {
			clear(x.Bits())
			x.SetInt64(0)
		}
	}
}

func toInt(w *engine.Words) *big.Int {
	b := w.Bytes()
	defer secure.Wipe32(&b)
	return new(big.Int).SetBytes(b[:])
}

func fromInt(w *engine.Words, x *big.Int) {
	var b [32]byte
	x.FillBytes(b[:])
	w.SetBytes(&b)
	secure.Wipe32(&b)
}

func splitPoint(x, y *engine.Words, uncompressed []byte) bool {
	if len(uncompressed) != 65 {
		return false
	}
	x.SetBytes((*[32]byte)(uncompressed[1:33]))
	y.SetBytes((*[32]byte)(uncompressed[33:65]))
	return true
}
