package crypto

import "testing"

func TestDeriveHandshakeKeysDeterministic(t *testing.T) {
	h, _ := NewHash(HashSHA256)
	secret := []byte("shared-secret-material")
	th1 := h.Sum([]byte("transcript-k-through-key-exchange-rsp"))

	a, err := DeriveHandshakeKeys(h, secret, th1, 32, 12)
	if err != nil {
		t.Fatalf("DeriveHandshakeKeys: %v", err)
	}
	b, err := DeriveHandshakeKeys(h, secret, th1, 32, 12)
	if err != nil {
		t.Fatalf("DeriveHandshakeKeys: %v", err)
	}
	if string(a.Request.Key) != string(b.Request.Key) {
		t.Fatalf("handshake key derivation was not deterministic")
	}
	if string(a.Request.Key) == string(a.Response.Key) {
		t.Fatalf("request and response handshake keys must differ")
	}
}

func TestDeriveDataKeysDiffersFromHandshake(t *testing.T) {
	h, _ := NewHash(HashSHA256)
	secret := []byte("shared-secret-material")
	th1 := h.Sum([]byte("th1"))
	th2 := h.Sum([]byte("th2"))

	hs, _ := DeriveHandshakeKeys(h, secret, th1, 32, 12)
	data, _ := DeriveDataKeys(h, secret, th2, 32, 12)
	if string(hs.Request.Key) == string(data.Request.Key) {
		t.Fatalf("data keys must differ from handshake keys")
	}
}

func TestDeriveUpdatedKeyChangesKey(t *testing.T) {
	h, _ := NewHash(HashSHA256)
	old := DirectionalKeys{Key: make([]byte, 32), IV: make([]byte, 12)}
	for i := range old.Key {
		old.Key[i] = byte(i)
	}
	updated, err := DeriveUpdatedKey(h, old)
	if err != nil {
		t.Fatalf("DeriveUpdatedKey: %v", err)
	}
	if string(updated.Key) == string(old.Key) {
		t.Fatalf("updated key must differ from the old key")
	}
	again, _ := DeriveUpdatedKey(h, old)
	if string(again.Key) != string(updated.Key) {
		t.Fatalf("DeriveUpdatedKey must be deterministic given the same old key")
	}
}
