package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestAEADSuitesRoundTrip(t *testing.T) {
	for _, alg := range []AEADAlg{AEADAlgAESGCM256, AEADAlgChaCha20Poly1305} {
		suite, err := NewAEAD(alg)
		if err != nil {
			t.Fatalf("NewAEAD(%v): %v", alg, err)
		}
		key := make([]byte, suite.KeySize())
		nonce := make([]byte, suite.NonceSize())
		rand.Read(key)
		rand.Read(nonce)
		aad := []byte("header-bytes")
		pt := []byte("application data carried over the session")

		ct, err := suite.Seal(key, nonce, aad, pt)
		if err != nil {
			t.Fatalf("alg %v Seal: %v", alg, err)
		}
		got, err := suite.Open(key, nonce, aad, ct)
		if err != nil {
			t.Fatalf("alg %v Open: %v", alg, err)
		}
		if !bytes.Equal(got, pt) {
			t.Fatalf("alg %v roundtrip mismatch", alg)
		}

		ct[0] ^= 0xFF
		if _, err := suite.Open(key, nonce, aad, ct); err != ErrVerifyFailed {
			t.Fatalf("alg %v: expected ErrVerifyFailed on tampered ciphertext, got %v", alg, err)
		}
	}
}

func TestSequenceNonceVariesWithSequence(t *testing.T) {
	iv := make([]byte, 12)
	n1 := SequenceNonce(iv, 1)
	n2 := SequenceNonce(iv, 2)
	if bytes.Equal(n1, n2) {
		t.Fatalf("nonces for different sequence numbers must differ")
	}
}
