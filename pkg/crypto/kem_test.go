package crypto

import "testing"

func TestKyberContextAgreeRejectsBadSize(t *testing.T) {
	ctx, err := newKyberContext()
	if err != nil {
		t.Fatalf("newKyberContext: %v", err)
	}
	if _, err := ctx.Agree([]byte("too-short")); err == nil {
		t.Fatalf("expected an error for an undersized ciphertext")
	}
}

func TestDHEGroupKyber1024ViaFacade(t *testing.T) {
	ctx, err := NewDHEContext(DHEGroupKyber1024)
	if err != nil {
		t.Fatalf("NewDHEContext: %v", err)
	}
	size, err := DHEPublicSize(DHEGroupKyber1024)
	if err != nil {
		t.Fatalf("DHEPublicSize: %v", err)
	}
	if len(ctx.Public()) != size {
		t.Fatalf("Public() len = %d, want %d", len(ctx.Public()), size)
	}
	peerSize, err := DHEPeerShareSize(DHEGroupKyber1024)
	if err != nil {
		t.Fatalf("DHEPeerShareSize: %v", err)
	}
	if peerSize != kyberCiphertextSize {
		t.Fatalf("DHEPeerShareSize = %d, want Kyber1024 ciphertext size %d", peerSize, kyberCiphertextSize)
	}
}
