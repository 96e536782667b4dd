package crypto

import (
	"crypto/rand"
	"io"
)

// Random implements the façade's random(n) operation, reading from r
// (normally crypto/rand.Reader, but tests inject a deterministic source to
// reproduce a specific nonce or retry sequence without mocking the whole
// façade).
func Random(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
