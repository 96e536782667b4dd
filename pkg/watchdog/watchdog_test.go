package watchdog

import (
	"sync"
	"testing"
	"time"
)

func TestArmFiresCallback(t *testing.T) {
	var mu sync.Mutex
	var fired uint32
	var attrs byte
	done := make(chan struct{})

	w := New(func(sessionID uint32, endAttributes byte) {
		mu.Lock()
		fired = sessionID
		attrs = endAttributes
		mu.Unlock()
		close(done)
	})

	w.Arm(0x1234, 10*time.Millisecond, 0x01)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if fired != 0x1234 {
		t.Fatalf("fired sessionID = %#x, want %#x", fired, 0x1234)
	}
	if attrs != 0x01 {
		t.Fatalf("endAttributes = %#x, want 0x01", attrs)
	}
}

func TestDisarmPreventsCallback(t *testing.T) {
	fired := make(chan struct{}, 1)
	w := New(func(sessionID uint32, endAttributes byte) {
		fired <- struct{}{}
	})

	w.Arm(1, 10*time.Millisecond, 0)
	w.Disarm(1)

	select {
	case <-fired:
		t.Fatal("callback fired after Disarm")
	case <-time.After(50 * time.Millisecond):
	}

	if w.Armed(1) {
		t.Fatal("session still reports armed after Disarm")
	}
}

func TestResetPushesDeadlineOut(t *testing.T) {
	fired := make(chan struct{}, 1)
	w := New(func(sessionID uint32, endAttributes byte) {
		fired <- struct{}{}
	})

	w.Arm(2, 30*time.Millisecond, 0)
	time.Sleep(15 * time.Millisecond)
	w.Reset(2, 30*time.Millisecond)

	select {
	case <-fired:
		t.Fatal("callback fired before the reset deadline")
	case <-time.After(20 * time.Millisecond):
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback never fired after reset")
	}
}

func TestResetNoOpWhenNotArmed(t *testing.T) {
	w := New(func(sessionID uint32, endAttributes byte) {})
	w.Reset(99, time.Millisecond)
	if w.Armed(99) {
		t.Fatal("Reset armed a session that was never armed")
	}
}
