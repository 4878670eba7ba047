// Package p256 provides NIST P-256 key generation, ECDSA signing and
// verification, and ECDH key agreement.
//
// Every value this package hands out has already been validated: secret
// keys are in [1, n-1], public keys lie on the curve, and both signature
// components are in [1, n-1]. Decoding is the only fallible step, and it
// fails with ErrInvalidEncoding.
//
// # Keys
//
// Generate a key pair from a randomness source (nil means crypto/rand):
//
//	kp, err := p256.GenerateKeypair(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer kp.Zeroize()
//
// Or decode a 32-byte big-endian secret scalar:
//
//	sk, err := p256.NewSecretKey(raw)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Signing
//
// Signatures are randomized ECDSA. The nonce is drawn from the supplied
// reader by rejection sampling, so a deterministic reader gives
// deterministic signatures:
//
//	sig, err := sk.Sign(msg, nil)
//	ok := sk.PublicKey().Verify(msg, sig)
//
// SignPrehashed and VerifyPrehashed take a 32-byte digest instead of a
// message.
//
// # Agreement
//
//	shared := sk.Agree(peer)
//	defer shared.Zeroize()
//
// # Encodings
//
// Public keys: SEC1 compressed (33 bytes), SEC1 uncompressed (65 bytes) and
// untagged x||y (64 bytes). Signatures: untagged r||s (64 bytes) and DER.
//
// # Build tags
//
// The arithmetic engine is chosen at build time. On amd64, arm64, arm and
// 386 the default build uses constant-time arithmetic from filippo.io/nistec
// and safenum. Every other architecture (wasm, riscv64, ppc64le, s390x, ...)
// and any build with the purego or tinygo tag gets the portable engine built
// on Go's crypto/elliptic.
// Both produce identical bytes for identical inputs.
//
// The p256_noprehash tag removes message-level Sign, Verify and Sum256.
// The p256_noder tag removes DER support.
package p256
