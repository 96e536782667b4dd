package crypto

import "testing"

func TestDHEAgreementP256(t *testing.T) {
	a, err := NewDHEContext(DHEGroupP256)
	if err != nil {
		t.Fatalf("NewDHEContext: %v", err)
	}
	b, err := NewDHEContext(DHEGroupP256)
	if err != nil {
		t.Fatalf("NewDHEContext: %v", err)
	}
	secretA, err := a.Agree(b.Public())
	if err != nil {
		t.Fatalf("a.Agree: %v", err)
	}
	secretB, err := b.Agree(a.Public())
	if err != nil {
		t.Fatalf("b.Agree: %v", err)
	}
	if string(secretA) != string(secretB) {
		t.Fatalf("shared secrets did not match")
	}
}

func TestDHEAgreementX25519(t *testing.T) {
	a, _ := NewDHEContext(DHEGroupX25519)
	b, _ := NewDHEContext(DHEGroupX25519)
	secretA, err := a.Agree(b.Public())
	if err != nil {
		t.Fatalf("a.Agree: %v", err)
	}
	secretB, err := b.Agree(a.Public())
	if err != nil {
		t.Fatalf("b.Agree: %v", err)
	}
	if string(secretA) != string(secretB) {
		t.Fatalf("shared secrets did not match")
	}
}

func TestDHEPublicSizeMatchesGeneratedShare(t *testing.T) {
	for _, group := range []DHEGroup{DHEGroupP256, DHEGroupP384, DHEGroupX25519} {
		ctx, err := NewDHEContext(group)
		if err != nil {
			t.Fatalf("NewDHEContext(%v): %v", group, err)
		}
		size, err := DHEPublicSize(group)
		if err != nil {
			t.Fatalf("DHEPublicSize(%v): %v", group, err)
		}
		if len(ctx.Public()) != size {
			t.Errorf("group %v: Public() len = %d, want %d", group, len(ctx.Public()), size)
		}
	}
}

func TestDHEUnsupportedGroup(t *testing.T) {
	if _, err := NewDHEContext(0); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
