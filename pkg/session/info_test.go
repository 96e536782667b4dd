package session

import (
	"bytes"
	"testing"

	"github.com/spdmgo/requester/pkg/crypto"
)

func TestInfoLifecycle(t *testing.T) {
	info := NewInfo(1, TypeKeyExchange, crypto.HashSHA256, 256)
	if info.State() != SessionNotStarted {
		t.Fatalf("initial state = %v, want NotStarted", info.State())
	}

	secret := bytes.Repeat([]byte{0x11}, 32)
	th1 := bytes.Repeat([]byte{0x22}, 32)
	if err := info.EnterHandshaking(secret, th1, 32, 12); err != nil {
		t.Fatalf("EnterHandshaking: %v", err)
	}
	if info.State() != Handshaking {
		t.Fatalf("state after EnterHandshaking = %v, want Handshaking", info.State())
	}

	th2 := bytes.Repeat([]byte{0x33}, 32)
	if err := info.EnterEstablished(secret, th2, 32, 12); err != nil {
		t.Fatalf("EnterEstablished: %v", err)
	}
	if info.State() != Established {
		t.Fatalf("state after EnterEstablished = %v, want Established", info.State())
	}

	req, rsp := info.DataKeys()
	if len(req.Key) != 32 || len(rsp.Key) != 32 {
		t.Fatalf("unexpected data key sizes: req=%d rsp=%d", len(req.Key), len(rsp.Key))
	}
	if bytes.Equal(req.Key, rsp.Key) {
		t.Fatalf("request and response keys must differ")
	}

	if seq := info.NextRequestSeq(); seq != 0 {
		t.Fatalf("first seq = %d, want 0", seq)
	}
	if seq := info.NextRequestSeq(); seq != 1 {
		t.Fatalf("second seq = %d, want 1", seq)
	}

	info.Terminate()
	if info.State() != Terminated {
		t.Fatalf("state after Terminate = %v, want Terminated", info.State())
	}
	req, _ = info.DataKeys()
	if !bytes.Equal(req.Key, make([]byte, 32)) {
		t.Fatalf("request key not zeroized after Terminate")
	}
}

func TestInfoComposite(t *testing.T) {
	info := NewInfo(0x1234, TypeKeyExchange, crypto.HashSHA256, 256)
	info.BindResponderID(0x5678)
	if got, want := info.Composite(), uint32(0x12345678); got != want {
		t.Fatalf("Composite() = %#x, want %#x", got, want)
	}
}
