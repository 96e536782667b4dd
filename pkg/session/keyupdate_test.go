package session

import (
	"bytes"
	"testing"

	"github.com/spdmgo/requester/pkg/crypto"
)

func establishedInfo(t *testing.T) *Info {
	t.Helper()
	info := NewInfo(1, TypeKeyExchange, crypto.HashSHA256, 256)
	secret := bytes.Repeat([]byte{0x11}, 32)
	th1 := bytes.Repeat([]byte{0x22}, 32)
	if err := info.EnterHandshaking(secret, th1, 32, 12); err != nil {
		t.Fatalf("EnterHandshaking: %v", err)
	}
	th2 := bytes.Repeat([]byte{0x33}, 32)
	if err := info.EnterEstablished(secret, th2, 32, 12); err != nil {
		t.Fatalf("EnterEstablished: %v", err)
	}
	return info
}

func TestKeyUpdateRollback(t *testing.T) {
	info := establishedInfo(t)
	_, origRsp := info.DataKeys()
	origRspKey := append([]byte{}, origRsp.Key...)

	if err := info.BeginUpdateAllKeys(); err != nil {
		t.Fatalf("BeginUpdateAllKeys: %v", err)
	}
	if !info.keyUpdate.rspPending {
		t.Fatalf("expected pending responder key after BeginUpdateAllKeys")
	}

	info.RollbackResponderKey()
	if info.keyUpdate.rspPending {
		t.Fatalf("pending flag still set after rollback")
	}
	_, rspAfter := info.DataKeys()
	if !bytes.Equal(rspAfter.Key, origRspKey) {
		t.Fatalf("active responder key changed despite rollback")
	}
}

func TestKeyUpdateActivateResponderThenRequester(t *testing.T) {
	info := establishedInfo(t)
	_, origRsp := info.DataKeys()
	origReq, _ := info.DataKeys()

	if err := info.BeginUpdateAllKeys(); err != nil {
		t.Fatalf("BeginUpdateAllKeys: %v", err)
	}
	info.ActivateResponderKey()
	_, newRsp := info.DataKeys()
	if bytes.Equal(newRsp.Key, origRsp.Key) {
		t.Fatalf("responder key unchanged after activation")
	}
	if info.keyUpdate.rspPending {
		t.Fatalf("pending flag still set after activation")
	}

	if err := info.ActivateRequesterKey(); err != nil {
		t.Fatalf("ActivateRequesterKey: %v", err)
	}
	newReq, _ := info.DataKeys()
	if bytes.Equal(newReq.Key, origReq.Key) {
		t.Fatalf("requester key unchanged after activation")
	}
	if seq := info.NextRequestSeq(); seq != 0 {
		t.Fatalf("request seq not reset after key update, got %d", seq)
	}
}

func TestKeyUpdatedFlag(t *testing.T) {
	info := establishedInfo(t)
	if info.KeyUpdated() {
		t.Fatalf("KeyUpdated() true before any update")
	}
	info.MarkKeyUpdated(true)
	if !info.KeyUpdated() {
		t.Fatalf("KeyUpdated() false after MarkKeyUpdated(true)")
	}
}
