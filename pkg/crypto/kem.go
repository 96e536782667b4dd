package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/kyber/kyber1024"
)

const (
	kyberCiphertextSize = kyber1024.CiphertextSize
	kyberPublicKeySize  = kyber1024.PublicKeySize
)

// kyberContext adapts ML-KEM-1024's encapsulate/decapsulate shape onto the
// DHEContext interface. A requester only ever decapsulates (it is never
// the side that holds the peer's encapsulation key and replies with a
// ciphertext), so Public() here returns the requester's own decapsulation
// key's public half, and Agree treats its argument as the ciphertext the
// peer returned rather than a second public key.
type kyberContext struct {
	pub  kem.PublicKey
	priv kem.PrivateKey
}

func newKyberContext() (*kyberContext, error) {
	scheme := kyber1024.Scheme()
	pub, priv, err := scheme.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("crypto: kyber key generation: %w", err)
	}
	return &kyberContext{pub: pub, priv: priv}, nil
}

func (c *kyberContext) Public() []byte {
	b, _ := c.pub.MarshalBinary()
	return b
}

func (c *kyberContext) Agree(ciphertext []byte) ([]byte, error) {
	scheme := kyber1024.Scheme()
	if len(ciphertext) != scheme.CiphertextSize() {
		return nil, fmt.Errorf("%w: expected %d byte ciphertext, got %d",
			ErrUnsupported, scheme.CiphertextSize(), len(ciphertext))
	}
	return scheme.Decapsulate(c.priv, ciphertext)
}

// kyberRand is kept as a named reference so this file documents which
// entropy source backs key generation, matching the façade's random(n)
// contract rather than leaving it implicit in the circl call.
var kyberRand = rand.Reader
