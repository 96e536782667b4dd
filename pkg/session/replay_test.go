package session

import "testing"

func TestReplayWindowAcceptsInOrder(t *testing.T) {
	w := NewReplayWindow(1 << 32)
	for seq := uint64(0); seq < 5; seq++ {
		accept, ok := w.Check(seq)
		if !ok {
			t.Fatalf("seq %d rejected", seq)
		}
		accept()
	}
}

func TestReplayWindowRejectsDuplicate(t *testing.T) {
	w := NewReplayWindow(1 << 32)
	accept, ok := w.Check(10)
	if !ok {
		t.Fatalf("seq 10 rejected on first use")
	}
	accept()

	if _, ok := w.Check(10); ok {
		t.Fatalf("duplicate seq 10 accepted")
	}
}

func TestReplayWindowToleratesReorder(t *testing.T) {
	w := NewReplayWindow(1 << 32)
	for _, seq := range []uint64{5, 3, 4, 6} {
		accept, ok := w.Check(seq)
		if !ok {
			t.Fatalf("seq %d rejected during reorder", seq)
		}
		accept()
	}
}

func TestReplayWindowUncommittedCheckDoesNotBlock(t *testing.T) {
	w := NewReplayWindow(1 << 32)
	if _, ok := w.Check(1); !ok {
		t.Fatalf("seq 1 rejected")
	}
	if _, ok := w.Check(1); !ok {
		t.Fatalf("seq 1 should remain acceptable when accept() was never called")
	}
}
