//go:build !p256_noder && !p256_noprehash

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/envelope"
	"github.com/anchorageoss/p256/keys"
	"github.com/anchorageoss/p256/verify"
)

// Checks that the encoding layers (CBOR COSE keys, borsh envelopes, DER)
// and the verify service run on TinyGo targets.

func main() {
	fmt.Println("TinyGo Full Verification Test")
	fmt.Println("================================")

	kp, err := p256.GenerateKeypair(nil)
	if err != nil {
		fmt.Printf("FAILED: keygen: %v\n", err)
		os.Exit(1)
	}
	defer kp.Zeroize()

	tests := []struct {
		name string
		fn   func(*p256.Keypair) error
	}{
		{"COSE_Key encoding (CBOR)", testCOSE},
		{"Envelope encoding (Borsh)", testEnvelope},
		{"DER signatures", testDER},
		{"Verify service", testVerifyService},
	}

	failed := false
	for i, tt := range tests {
		fmt.Printf("\n[Test %d] %s...\n", i+1, tt.name)
		if err := tt.fn(kp); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failed = true
			continue
		}
		fmt.Println("SUCCESS")
	}

	fmt.Println("\n================================")
	if failed {
		os.Exit(1)
	}
	fmt.Println("All tests completed!")
}

func testCOSE(kp *p256.Keypair) error {
	encoded, err := keys.MarshalCOSESecretKey(kp.Secret)
	if err != nil {
		return err
	}
	fmt.Printf("COSE_Key encoded %d bytes\n", len(encoded))

	pub, sk, err := keys.ParseCOSEKey(encoded)
	if err != nil {
		return err
	}
	defer sk.Zeroize()
	if !pub.Equal(kp.Public) || !sk.Equal(kp.Secret) {
		return fmt.Errorf("decoded key differs")
	}
	return nil
}

func testEnvelope(kp *p256.Keypair) error {
	msg := []byte("tinygo artifact")
	env, err := envelope.Seal("tinygo", msg, "device", kp.Secret, nil)
	if err != nil {
		return err
	}
	encoded, err := env.Encode()
	if err != nil {
		return err
	}
	fmt.Printf("Envelope encoded %d bytes, hash %s\n", len(encoded), envelope.ComputeHash(encoded))

	decoded, err := envelope.Decode(encoded)
	if err != nil {
		return err
	}
	return decoded.Verify(msg, 1)
}

func testDER(kp *p256.Keypair) error {
	sig, err := kp.Secret.Sign([]byte("der"), nil)
	if err != nil {
		return err
	}
	der := sig.DER()
	parsed, err := p256.ParseDERSignature(der)
	if err != nil {
		return err
	}
	if !parsed.Equal(sig) {
		return fmt.Errorf("DER round trip changed the signature")
	}
	fmt.Printf("DER signature %d bytes\n", len(der))
	return nil
}

func testVerifyService(kp *p256.Keypair) error {
	msg := []byte("service")
	sig, err := kp.Secret.Sign(msg, nil)
	if err != nil {
		return err
	}

	c := kp.Public.CompressedBytes()
	raw := sig.Bytes()
	result, err := verify.NewService(nil).VerifySignature(context.Background(), &verify.SignatureRequest{
		PublicKeyHex: fmt.Sprintf("%x", c[:]),
		SignatureHex: fmt.Sprintf("%x", raw[:]),
		Message:      msg,
	})
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("%s", result.Message)
	}
	fmt.Printf("Backend: %s\n", result.Backend)
	return nil
}
