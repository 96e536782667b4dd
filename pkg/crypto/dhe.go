package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// DHEGroup identifies a negotiable Diffie-Hellman-style group
// (negotiated_algorithms.DHE group, §3).
type DHEGroup byte

const (
	DHEGroupP256 DHEGroup = iota + 1
	DHEGroupP384
	DHEGroupX25519
	// DHEGroupKyber1024 is a post-quantum KEM wired in as an additional
	// negotiable group; see kem.go for how it adapts the asymmetric
	// encapsulate/decapsulate shape onto the symmetric-looking
	// dhe_new/dhe_public/dhe_agree façade.
	DHEGroupKyber1024
)

// DHEContext is the façade's dhe_new/dhe_public/dhe_agree trio for one
// in-flight exchange. A requester calls NewDHEContext once per
// KEY_EXCHANGE attempt, sends Public() to the peer, and calls Agree with
// whatever the peer sent back.
type DHEContext interface {
	// Public returns this side's share to send to the peer.
	Public() []byte
	// Agree consumes the peer's share (an ECDH public key for the
	// Diffie-Hellman groups, a KEM ciphertext for Kyber1024) and returns
	// the resulting shared secret.
	Agree(peerShare []byte) ([]byte, error)
}

// NewDHEContext implements dhe_new(group): it generates an ephemeral
// keypair (or, for the KEM group, an ephemeral decapsulation key) and
// returns a context ready to produce Public() and later Agree().
func NewDHEContext(group DHEGroup) (DHEContext, error) {
	switch group {
	case DHEGroupP256:
		return newECDHContext(ecdh.P256())
	case DHEGroupP384:
		return newECDHContext(ecdh.P384())
	case DHEGroupX25519:
		return newECDHContext(ecdh.X25519())
	case DHEGroupKyber1024:
		return newKyberContext()
	default:
		return nil, ErrUnsupported
	}
}

type ecdhContext struct {
	curve ecdh.Curve
	priv  *ecdh.PrivateKey
}

func newECDHContext(curve ecdh.Curve) (*ecdhContext, error) {
	priv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate ECDH key: %w", err)
	}
	return &ecdhContext{curve: curve, priv: priv}, nil
}

func (c *ecdhContext) Public() []byte {
	return c.priv.PublicKey().Bytes()
}

func (c *ecdhContext) Agree(peerShare []byte) ([]byte, error) {
	peerPub, err := c.curve.NewPublicKey(peerShare)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid peer public key: %v", ErrUnsupported, err)
	}
	secret, err := c.priv.ECDH(peerPub)
	if err != nil {
		return nil, fmt.Errorf("crypto: ECDH agreement failed: %w", err)
	}
	return secret, nil
}

// DHEPublicSize returns the wire size of this side's own Public() share
// (what the requester puts in its KEY_EXCHANGE request).
func DHEPublicSize(group DHEGroup) (int, error) {
	switch group {
	case DHEGroupP256:
		return 65, nil
	case DHEGroupP384:
		return 97, nil
	case DHEGroupX25519:
		return 32, nil
	case DHEGroupKyber1024:
		return kyberPublicKeySize, nil
	default:
		return 0, ErrUnsupported
	}
}

// DHEPeerShareSize returns the size of what the codec should expect back
// from the peer in the matching response's DHEPublic field. For the
// symmetric Diffie-Hellman groups this equals DHEPublicSize; for the
// Kyber1024 KEM group the peer returns a ciphertext instead of a public
// key, and the ciphertext size is returned (for Kyber1024 it is 1568
// bytes, the same length as the requester's encapsulation-key share).
func DHEPeerShareSize(group DHEGroup) (int, error) {
	if group == DHEGroupKyber1024 {
		return kyberCiphertextSize, nil
	}
	return DHEPublicSize(group)
}
