package p256

import "io"

// Keypair holds a secret key and its public key.
type Keypair struct {
	Public *PublicKey
	Secret *SecretKey
}

// GenerateKeypair draws a secret key from rand and derives its public key.
// A nil rand means crypto/rand.Reader.
func GenerateKeypair(rand io.Reader) (*Keypair, error) {
	sk, err := GenerateSecretKey(rand)
	if err != nil {
		return nil, err
	}
	return &Keypair{Public: sk.PublicKey(), Secret: sk}, nil
}

// NewKeypair wraps an existing secret key.
func NewKeypair(sk *SecretKey) *Keypair {
	return &Keypair{Public: sk.PublicKey(), Secret: sk}
}

// Zeroize clears the secret half.
func (kp *Keypair) Zeroize() {
	kp.Secret.Zeroize()
}
