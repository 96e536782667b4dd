package session

import (
	"testing"

	"github.com/spdmgo/requester/pkg/crypto"
)

func TestManagerBeginFindFree(t *testing.T) {
	mgr := NewManager(2, crypto.HashSHA256, 256)

	info, err := mgr.Begin(TypeKeyExchange)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if info.State() != SessionNotStarted {
		t.Fatalf("new session state = %v, want NotStarted", info.State())
	}

	found, ok := mgr.Find(info.ReqSessionID)
	if !ok || found != info {
		t.Fatalf("Find failed: ok=%v found=%v", ok, found)
	}

	info.BindResponderID(0xAAAA)
	composite := info.Composite()
	found, ok = mgr.FindByComposite(composite)
	if !ok || found != info {
		t.Fatalf("FindByComposite failed: ok=%v found=%v", ok, found)
	}

	mgr.Free(info.ReqSessionID)
	if _, ok := mgr.Find(info.ReqSessionID); ok {
		t.Fatalf("session still present after Free")
	}
	if mgr.Count() != 0 {
		t.Fatalf("count = %d, want 0", mgr.Count())
	}
}

func TestManagerIsFull(t *testing.T) {
	mgr := NewManager(1, crypto.HashSHA256, 256)
	if mgr.IsFull() {
		t.Fatalf("fresh manager reports full")
	}
	if _, err := mgr.Begin(TypeKeyExchange); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !mgr.IsFull() {
		t.Fatalf("manager should be full after reaching maxSessions")
	}
	if _, err := mgr.Begin(TypeKeyExchange); err != ErrSessionTableFull {
		t.Fatalf("expected ErrSessionTableFull, got %v", err)
	}
}
