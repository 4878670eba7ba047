//go:build !p256_noprehash

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/anchorageoss/p256"
)

// Smoke test for TinyGo targets. Build with -tags purego on the standard
// toolchain to run the same engine TinyGo selects.

const (
	secret1  = "519b423d715f8b581f4fa8ee59f4771a5b44c8130b4e3eacca54a56dda72b464"
	public1  = "031ccbe91c075fc7f4f033bfa248db8fccd3565de94bbfb12f3c59ff46c271bf83"
	secret2  = "fb5469bfaac8eb74c32905fc92b50dba9f6660cdcd42df9e120ba0c6bbe00409"
	public2  = "02d717e98cbb77382563fac7530c4c10d6d608af29837c051e3c191243b1c290df"
	shared12 = "c8e52022670c8e9a9468d1541a078c61f66a793ab95e61de0133843153e264f2"

	message   = "Data to sign"
	msgDigest = "b4d508d432ad5de819c3ffeb92e050b76320f17a96535600716b1374829f60ef"
	signature = "f3ac8061b514795b8843e3d6629527ed2afd6b1f6a555a7acabb5e6f79c8c2ac" +
		"de47b078d63191f11c15338d84823a00990a105caa6c2b77173bd4ad716c37b6"
)

func main() {
	fmt.Println("P-256 TinyGo Smoke Test")
	fmt.Println("=======================")
	fmt.Printf("Backend: %s\n", p256.Backend())

	tests := []struct {
		name string
		fn   func() error
	}{
		{"SHA-256", testDigest},
		{"Public key derivation", testKeygen},
		{"Signature verification", testVerify},
		{"Sign and verify", testSignVerify},
		{"ECDH agreement", testAgree},
	}

	for i, tt := range tests {
		fmt.Printf("\n[Test %d] %s...\n", i+1, tt.name)
		if err := tt.fn(); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("SUCCESS")
	}

	fmt.Println("\n=======================")
	fmt.Println("All P-256 tests passed!")
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func testDigest() error {
	d := p256.Sum256([]byte(message))
	if got := hex.EncodeToString(d[:]); got != msgDigest {
		return fmt.Errorf("digest %s, want %s", got, msgDigest)
	}
	return nil
}

func testKeygen() error {
	sk, err := p256.NewSecretKey(mustHex(secret1))
	if err != nil {
		return err
	}
	defer sk.Zeroize()

	c := sk.PublicKey().CompressedBytes()
	if !bytes.Equal(c[:], mustHex(public1)) {
		return fmt.Errorf("public key %x, want %s", c, public1)
	}
	return nil
}

func testVerify() error {
	pub, err := p256.NewPublicKey(mustHex(public1))
	if err != nil {
		return err
	}
	sig, err := p256.NewSignature(mustHex(signature))
	if err != nil {
		return err
	}
	if !pub.Verify([]byte(message), sig) {
		return fmt.Errorf("known signature rejected")
	}
	if pub.Verify([]byte(message+"!"), sig) {
		return fmt.Errorf("signature accepted for a different message")
	}
	return nil
}

func testSignVerify() error {
	kp, err := p256.GenerateKeypair(nil)
	if err != nil {
		return err
	}
	defer kp.Zeroize()

	sig, err := kp.Secret.Sign([]byte(message), nil)
	if err != nil {
		return err
	}
	if !kp.Public.Verify([]byte(message), sig) {
		return fmt.Errorf("fresh signature rejected")
	}
	return nil
}

func testAgree() error {
	sk, err := p256.NewSecretKey(mustHex(secret2))
	if err != nil {
		return err
	}
	defer sk.Zeroize()

	peer, err := p256.NewPublicKey(mustHex(public1))
	if err != nil {
		return err
	}
	if _, err := p256.NewPublicKey(mustHex(public2)); err != nil {
		return err
	}

	ss := sk.Agree(peer)
	defer ss.Zeroize()
	if got := hex.EncodeToString(ss.Bytes()); got != shared12 {
		return fmt.Errorf("shared secret %s, want %s", got, shared12)
	}
	return nil
}
