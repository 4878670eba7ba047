//go:build js && wasm && !p256_noder && !p256_noprehash

package main

import (
	"encoding/hex"
	"errors"
	"syscall/js"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/verify"
)

func main() {
	c := make(chan struct{})

	js.Global().Set("p256Keygen", js.FuncOf(keygenWrapper))
	js.Global().Set("p256Sign", js.FuncOf(signWrapper))
	js.Global().Set("p256Verify", js.FuncOf(verifyWrapper))
	js.Global().Set("p256Agree", js.FuncOf(agreeWrapper))

	println("p256 WASM loaded, backend:", p256.Backend())

	<-c
}

// result converts a value and error into the {value, error} object returned to JavaScript.
func result(value any, err error) any {
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"value": value}
}

func stringArgs(args []js.Value, n int) ([]string, error) {
	if len(args) < n {
		return nil, errors.New("missing arguments")
	}
	out := make([]string, n)
	for i := range out {
		if args[i].Type() != js.TypeString {
			return nil, errors.New("arguments must be strings")
		}
		out[i] = args[i].String()
	}
	return out, nil
}

// keygenWrapper returns {secretKey, publicKey} as hex.
func keygenWrapper(this js.Value, args []js.Value) any {
	kp, err := p256.GenerateKeypair(nil)
	if err != nil {
		return result(nil, err)
	}
	defer kp.Zeroize()

	d := kp.Secret.Bytes()
	c := kp.Public.CompressedBytes()
	out := map[string]any{
		"secretKey": hex.EncodeToString(d[:]),
		"publicKey": hex.EncodeToString(c[:]),
	}
	clear(d[:])
	return result(out, nil)
}

// signWrapper takes (secretKeyHex, message) and returns the raw signature as hex.
func signWrapper(this js.Value, args []js.Value) any {
	in, err := stringArgs(args, 2)
	if err != nil {
		return result(nil, err)
	}

	sk, err := parseSecretKey(in[0])
	if err != nil {
		return result(nil, err)
	}
	defer sk.Zeroize()

	sig, err := sk.Sign([]byte(in[1]), nil)
	if err != nil {
		return result(nil, err)
	}
	raw := sig.Bytes()
	return result(hex.EncodeToString(raw[:]), nil)
}

// verifyWrapper takes (publicKeyHex, signatureHex, message) and returns a bool.
func verifyWrapper(this js.Value, args []js.Value) any {
	in, err := stringArgs(args, 3)
	if err != nil {
		return result(nil, err)
	}

	pub, err := verify.ParsePublicKey(in[0])
	if err != nil {
		return result(nil, err)
	}
	sig, _, err := verify.ParseSignature(in[1])
	if err != nil {
		return result(nil, err)
	}
	return result(pub.Verify([]byte(in[2]), sig), nil)
}

// agreeWrapper takes (secretKeyHex, peerPublicKeyHex) and returns the shared secret as hex.
func agreeWrapper(this js.Value, args []js.Value) any {
	in, err := stringArgs(args, 2)
	if err != nil {
		return result(nil, err)
	}

	sk, err := parseSecretKey(in[0])
	if err != nil {
		return result(nil, err)
	}
	defer sk.Zeroize()

	peer, err := verify.ParsePublicKey(in[1])
	if err != nil {
		return result(nil, err)
	}

	ss := sk.Agree(peer)
	defer ss.Zeroize()
	return result(hex.EncodeToString(ss.Bytes()), nil)
}

func parseSecretKey(s string) (*p256.SecretKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	defer clear(raw)
	return p256.NewSecretKey(raw)
}
