package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEADAlg identifies a negotiated AEAD suite (§3
// negotiated_algorithms.AEAD suite).
type AEADAlg byte

const (
	AEADAlgAESGCM256 AEADAlg = iota + 1
	AEADAlgChaCha20Poly1305
)

// SequenceNonce XORs a per-direction IV with a 64-bit little-endian
// sequence number, the construction every negotiated AEAD suite here uses
// to turn a fixed IV plus a monotonic counter into a fresh nonce per
// message without needing to transmit the nonce on the wire.
func SequenceNonce(iv []byte, seq uint64) []byte {
	nonce := make([]byte, len(iv))
	copy(nonce, iv)
	var seqBytes [8]byte
	binary.LittleEndian.PutUint64(seqBytes[:], seq)
	off := len(nonce) - 8
	if off < 0 {
		off = 0
	}
	for i := 0; i < 8 && off+i < len(nonce); i++ {
		nonce[off+i] ^= seqBytes[i]
	}
	return nonce
}

// AEAD is the façade's aead_seal/open pair for one negotiated suite.
type AEAD interface {
	KeySize() int
	NonceSize() int
	Seal(key, nonce, aad, plaintext []byte) ([]byte, error)
	Open(key, nonce, aad, ciphertext []byte) ([]byte, error)
}

// NewAEAD resolves alg to a concrete AEAD implementation.
func NewAEAD(alg AEADAlg) (AEAD, error) {
	switch alg {
	case AEADAlgAESGCM256:
		return aesGCM{}, nil
	case AEADAlgChaCha20Poly1305:
		return chachaPoly{}, nil
	default:
		return nil, ErrUnsupported
	}
}

type aesGCM struct{}

func (aesGCM) KeySize() int   { return 32 }
func (aesGCM) NonceSize() int { return 12 }

func (aesGCM) Seal(key, nonce, aad, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

func (aesGCM) Open(key, nonce, aad, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	pt, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrVerifyFailed
	}
	return pt, nil
}

type chachaPoly struct{}

func (chachaPoly) KeySize() int   { return chacha20poly1305.KeySize }
func (chachaPoly) NonceSize() int { return chacha20poly1305.NonceSize }

func (chachaPoly) Seal(key, nonce, aad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

func (chachaPoly) Open(key, nonce, aad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	pt, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrVerifyFailed
	}
	return pt, nil
}
