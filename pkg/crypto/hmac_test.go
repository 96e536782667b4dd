package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// TestHMACRFC4231Vector2 checks test case 2 from RFC 4231 (HMAC-SHA-256).
func TestHMACRFC4231Vector2(t *testing.T) {
	h, _ := NewHash(HashSHA256)
	key := []byte("Jefe")
	data := []byte("what do ya want for nothing?")
	want, _ := hex.DecodeString("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843")
	got := h.HMAC(key, data)
	if !bytes.Equal(got, want) {
		t.Fatalf("HMAC mismatch:\ngot  %x\nwant %x", got, want)
	}
}

func TestVerifyHMAC(t *testing.T) {
	h, _ := NewHash(HashSHA256)
	key := []byte("key")
	msg := []byte("message")
	mac := h.HMAC(key, msg)
	if !h.VerifyHMAC(key, msg, mac) {
		t.Fatalf("VerifyHMAC rejected a valid MAC")
	}
	mac[0] ^= 0xFF
	if h.VerifyHMAC(key, msg, mac) {
		t.Fatalf("VerifyHMAC accepted a corrupted MAC")
	}
}
