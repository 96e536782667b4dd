package crypto

import (
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 iteration limits accepted when a PSK hint resolves to a seed that
// must be stretched rather than used directly.
const (
	PBKDF2IterationsMin = 1000
	PBKDF2IterationsMax = 100000
)

// HKDFExtract performs the HKDF-Extract half of RFC 5869 under h.
func (h Hash) HKDFExtract(inputKey, salt []byte) []byte {
	return hkdf.Extract(h.New, inputKey, salt)
}

// HKDFExpand performs the HKDF-Expand half of RFC 5869 under h, producing
// length bytes of output keying material from a pseudorandom key.
func (h Hash) HKDFExpand(prk, info []byte, length int) ([]byte, error) {
	reader := hkdf.Expand(h.New, prk, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// HKDF is the combined Extract-then-Expand operation, the key-schedule
// function's usual entry point for turning a shared secret and a transcript
// hash into key material (§4.D).
func (h Hash) HKDF(inputKey, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(h.New, inputKey, salt, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// PBKDF2 derives keyLen bytes from password using iterations rounds of
// HMAC under h, for PSK hints that resolve to a low-entropy seed rather
// than a raw key.
func (h Hash) PBKDF2(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, h.New)
}
