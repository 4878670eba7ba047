package keys

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/internal/secure"
)

// COSE_Key constants from RFC 9052 and RFC 9053.
const (
	coseKtyEC2   = 2
	coseAlgES256 = -7
	coseCrvP256  = 1
)

// ErrInvalidCOSEKey is returned for COSE_Key structures that are not P-256 EC2 keys.
var ErrInvalidCOSEKey = errors.New("invalid COSE_Key")

type coseKey struct {
	Kty int    `cbor:"1,keyasint"`
	Alg int    `cbor:"3,keyasint,omitempty"`
	Crv int    `cbor:"-1,keyasint"`
	X   []byte `cbor:"-2,keyasint"`
	Y   []byte `cbor:"-3,keyasint"`
	D   []byte `cbor:"-4,keyasint,omitempty"`
}

var (
	coseEnc cbor.EncMode
	coseDec cbor.DecMode
)

func init() {
	var err error
	if coseEnc, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if coseDec, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(err)
	}
}

// MarshalCOSEPublicKey encodes pub as a COSE_Key with deterministic CBOR.
func MarshalCOSEPublicKey(pub *p256.PublicKey) ([]byte, error) {
	x, y := pub.X(), pub.Y()
	return coseEnc.Marshal(coseKey{
		Kty: coseKtyEC2,
		Alg: coseAlgES256,
		Crv: coseCrvP256,
		X:   x[:],
		Y:   y[:],
	})
}

// MarshalCOSESecretKey encodes sk and its public key as a COSE_Key. The
// result contains the secret scalar.
func MarshalCOSESecretKey(sk *p256.SecretKey) ([]byte, error) {
	pub := sk.PublicKey()
	x, y := pub.X(), pub.Y()
	d := sk.Bytes()
	defer secure.Wipe32(&d)

	return coseEnc.Marshal(coseKey{
		Kty: coseKtyEC2,
		Alg: coseAlgES256,
		Crv: coseCrvP256,
		X:   x[:],
		Y:   y[:],
		D:   d[:],
	})
}

// ParseCOSEKey decodes a COSE_Key. The secret key is nil when the structure
// has no d parameter. When d is present it must match x and y.
func ParseCOSEKey(data []byte) (*p256.PublicKey, *p256.SecretKey, error) {
	var k coseKey
	if err := coseDec.Unmarshal(data, &k); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidCOSEKey, err)
	}
	defer secure.Wipe(k.D)

	switch {
	case k.Kty != coseKtyEC2:
		return nil, nil, fmt.Errorf("%w: kty %d is not EC2", ErrInvalidCOSEKey, k.Kty)
	case k.Crv != coseCrvP256:
		return nil, nil, fmt.Errorf("%w: crv %d is not P-256", ErrInvalidCOSEKey, k.Crv)
	case k.Alg != 0 && k.Alg != coseAlgES256:
		return nil, nil, fmt.Errorf("%w: alg %d is not ES256", ErrInvalidCOSEKey, k.Alg)
	case len(k.X) != 32 || len(k.Y) != 32:
		return nil, nil, fmt.Errorf("%w: coordinates must be 32 bytes", ErrInvalidCOSEKey)
	}

	xy := make([]byte, 0, 64)
	xy = append(append(xy, k.X...), k.Y...)
	pub, err := p256.NewPublicKeyFromUntagged(xy)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidCOSEKey, err)
	}
	if k.D == nil {
		return pub, nil, nil
	}

	sk, err := p256.NewSecretKey(k.D)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidCOSEKey, err)
	}
	if !sk.PublicKey().Equal(pub) {
		sk.Zeroize()
		return nil, nil, fmt.Errorf("%w: d does not match x and y", ErrInvalidCOSEKey)
	}
	return pub, sk, nil
}
