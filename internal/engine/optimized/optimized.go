//go:build amd64 || arm64 || arm || 386

// Package optimized implements engine.Engine on constant-time arithmetic:
// point operations come from filippo.io/nistec (fiat-crypto field
// arithmetic) and scalar arithmetic mod n from github.com/cronokirby/safenum.
//
// safenum only has implementations for amd64, arm64, arm and 386, so the
// package is limited to those architectures.
package optimized

import (
	"filippo.io/nistec"
	"github.com/cronokirby/safenum"

	"github.com/anchorageoss/p256/internal/engine"
	"github.com/anchorageoss/p256/internal/secure"
)

// Name is reported by Engine.Name.
const Name = "optimized"

var order = safenum.ModulusFromBytes(engine.Order[:])

// Engine is stateless; the zero value is ready to use.
type Engine struct{}

var _ engine.Engine = Engine{}

func (Engine) Name() string { return Name }

func (Engine) CheckRangeN(k *engine.Words) bool {
	kNat := natFromWords(k)
	defer wipeNat(kNat)
	return inRange(kNat)
}

func (Engine) Keygen(x, y, d *engine.Words) bool {
	db := d.Bytes()
	defer secure.Wipe32(&db)

	dNat := new(safenum.Nat).SetBytes(db[:])
	defer wipeNat(dNat)
	if !inRange(dNat) {
		return false
	}
	p, err := nistec.NewP256Point().ScalarBaseMult(db[:])
	if err != nil {
		return false
	}
	return splitPoint(x, y, p.Bytes())
}

func (Engine) DecodePoint(x, y *engine.Words, sec1 []byte) bool {
	switch {
	case len(sec1) == 33 && (sec1[0] == 0x02 || sec1[0] == 0x03):
	case len(sec1) == 65 && sec1[0] == 0x04:
	default:
		// SetBytes would also accept the encoding of the identity.
		return false
	}
	p, err := nistec.NewP256Point().SetBytes(sec1)
	if err != nil {
		return false
	}
	return splitPoint(x, y, p.Bytes())
}

func (Engine) Sign(r, s *engine.Words, digest *[32]byte, d, k *engine.Words) bool {
	dNat, kNat := natFromWords(d), natFromWords(k)
	defer wipeNat(dNat, kNat)
	if !inRange(dNat) || !inRange(kNat) {
		return false
	}

	kb := k.Bytes()
	defer secure.Wipe32(&kb)

	bigR, err := nistec.NewP256Point().ScalarBaseMult(kb[:])
	if err != nil {
		return false
	}
	rx, err := bigR.BytesX()
	if err != nil {
		return false
	}
	rNat := new(safenum.Nat).Mod(new(safenum.Nat).SetBytes(rx), order)
	if rNat.EqZero() == 1 {
		return false
	}

	e := reduceDigest(digest)
	kInv := new(safenum.Nat).ModInverse(kNat, order)
	rd := new(safenum.Nat).ModMul(rNat, dNat, order)
	sum := new(safenum.Nat).ModAdd(e, rd, order)
	sNat := new(safenum.Nat).ModMul(kInv, sum, order)
	wipeNat(kInv, rd, sum)
	if sNat.EqZero() == 1 {
		return false
	}

	natToWords(r, rNat)
	natToWords(s, sNat)
	return true
}

func (Engine) Verify(x, y *engine.Words, digest *[32]byte, r, s *engine.Words) bool {
	rNat, sNat := natFromWords(r), natFromWords(s)
	if !inRange(rNat) || !inRange(sNat) {
		return false
	}
	q, ok := point(x, y)
	if !ok {
		return false
	}

	e := reduceDigest(digest)
	w := new(safenum.Nat).ModInverse(sNat, order)
	u1 := new(safenum.Nat).ModMul(e, w, order)
	u2 := new(safenum.Nat).ModMul(rNat, w, order)

	u1b, u2b := scalarBytes(u1), scalarBytes(u2)
	p1, err := nistec.NewP256Point().ScalarBaseMult(u1b[:])
	if err != nil {
		return false
	}
	p2, err := nistec.NewP256Point().ScalarMult(q, u2b[:])
	if err != nil {
		return false
	}
	xb, err := nistec.NewP256Point().Add(p1, p2).BytesX()
	if err != nil {
		// Point at infinity.
		return false
	}

	v := new(safenum.Nat).Mod(new(safenum.Nat).SetBytes(xb), order)
	var vw engine.Words
	natToWords(&vw, v)
	return vw.Equal(r)
}

func (Engine) ECDH(shared *[32]byte, d, x, y *engine.Words) bool {
	db := d.Bytes()
	defer secure.Wipe32(&db)

	dNat := new(safenum.Nat).SetBytes(db[:])
	defer wipeNat(dNat)
	if !inRange(dNat) {
		return false
	}
	q, ok := point(x, y)
	if !ok {
		return false
	}
	p, err := nistec.NewP256Point().ScalarMult(q, db[:])
	if err != nil {
		return false
	}
	xb, err := p.BytesX()
	if err != nil {
		return false
	}
	copy(shared[:], xb)
	secure.Wipe(xb)
	return true
}

func inRange(k *safenum.Nat) bool {
	_, _, lt := k.CmpMod(order)
	return lt&(1^k.EqZero()) == 1
}

func reduceDigest(digest *[32]byte) *safenum.Nat {
	return new(safenum.Nat).Mod(new(safenum.Nat).SetBytes(digest[:]), order)
}

var zeroScalar [32]byte

// wipeNat overwrites the limbs of each x with zeros in place.
func wipeNat(xs ...*safenum.Nat) {
	for _, x := range xs {
		if x != nil {
			x.SetBytes(zeroScalar[:])
		}
	}
}

func natFromWords(w *engine.Words) *safenum.Nat {
	b := w.Bytes()
	defer secure.Wipe32(&b)
	return new(safenum.Nat).SetBytes(b[:])
}

func scalarBytes(x *safenum.Nat) [32]byte {
	var b [32]byte
	raw := x.Bytes()
	if len(raw) > len(b) {
		raw = raw[len(raw)-len(b):]
	}
	copy(b[len(b)-len(raw):], raw)
	secure.Wipe(raw)
	return b
}

func natToWords(w *engine.Words, x *safenum.Nat) {
	b := scalarBytes(x)
	w.SetBytes(&b)
	secure.Wipe32(&b)
}

func point(x, y *engine.Words) (*nistec.P256Point, bool) {
	var buf [65]byte
	buf[0] = 0x04
	xb, yb := x.Bytes(), y.Bytes()
	copy(buf[1:33], xb[:])
	copy(buf[33:], yb[:])
	p, err := nistec.NewP256Point().SetBytes(buf[:])
	return p, err == nil
}

func splitPoint(x, y *engine.Words, uncompressed []byte) bool {
	if len(uncompressed) != 65 {
		return false
	}
	x.SetBytes((*[32]byte)(uncompressed[1:33]))
	y.SetBytes((*[32]byte)(uncompressed[33:65]))
	return true
}
