package requester

import (
	"bytes"
	"context"
	"testing"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// establishedSession builds a Context with a live Established session,
// bypassing the full handshake: KEY_UPDATE's tests only need the key
// schedule KEY_EXCHANGE/PSK_EXCHANGE would have left behind.
func establishedSession(t *testing.T, tr Transport) (*Context, *session.Info) {
	t.Helper()
	c := NewContext(DefaultConfig(), localCapsWithAlgorithms(), tr, nil)
	c.algNegotiated = true
	c.negotiated = NegotiatedAlgorithms{BaseHash: crypto.HashSHA256, AEADSuite: crypto.AEADAlgAESGCM256}

	mgr, err := c.ensureSessionManager()
	if err != nil {
		t.Fatalf("ensureSessionManager: %v", err)
	}
	info, err := mgr.Begin(session.TypeKeyExchange)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	aead, err := crypto.NewAEAD(crypto.AEADAlgAESGCM256)
	if err != nil {
		t.Fatalf("NewAEAD: %v", err)
	}
	keySize, ivSize := aead.KeySize(), aead.NonceSize()
	secret := bytes.Repeat([]byte{0x11}, 32)
	if err := info.EnterHandshaking(secret, []byte("th1"), keySize, ivSize); err != nil {
		t.Fatalf("EnterHandshaking: %v", err)
	}
	if err := info.EnterEstablished(secret, []byte("th2"), keySize, ivSize); err != nil {
		t.Fatalf("EnterEstablished: %v", err)
	}
	return c, info
}

func keyUpdateAck(op, param2 byte) []byte {
	return wire.NewWriter(wire.Header{Version: wireVersion, Code: wire.CodeKeyUpdateAck, Param1: op, Param2: param2}).Bytes()
}

// TestUpdateAllKeysSuccess covers the KEY_UPDATE ALL success scenario: both
// phase U (UPDATE_ALL_KEYS) and phase V (VERIFY_NEW_KEY) ACKs echo correctly,
// so both directions' data keys must have rotated away from their originals.
func TestUpdateAllKeysSuccess(t *testing.T) {
	tr := newFakeTransport()
	c, info := establishedSession(t, tr)
	c.rand = fixedByteReader(0x5A)

	origReq, origRsp := info.DataKeys()
	origReqKey := append([]byte{}, origReq.Key...)
	origRspKey := append([]byte{}, origRsp.Key...)

	sid := info.Composite()
	tr.queue(sid, keyUpdateAck(wire.KeyUpdateOpUpdateAllKeys, 0x5A))
	tr.queue(sid, keyUpdateAck(wire.KeyUpdateOpVerifyNewKey, 0x5A))

	if err := c.UpdateAllKeys(context.Background(), info.ReqSessionID); err != nil {
		t.Fatalf("UpdateAllKeys: %v", err)
	}

	newReq, newRsp := info.DataKeys()
	if bytes.Equal(newReq.Key, origReqKey) {
		t.Fatal("requester data key did not rotate")
	}
	if bytes.Equal(newRsp.Key, origRspKey) {
		t.Fatal("responder data key did not rotate")
	}
	if !info.KeyUpdated() {
		t.Fatal("KeyUpdated() should report true after a successful round")
	}
}

// TestUpdateAllKeysRollback covers the KEY_UPDATE ALL rollback scenario: the
// phase U round trip fails at the transport, so the pending responder key
// must never be installed and the active key must be left untouched.
func TestUpdateAllKeysRollback(t *testing.T) {
	tr := newFakeTransport()
	c, info := establishedSession(t, tr)
	c.rand = fixedByteReader(0x5A)
	tr.sendErr = ErrTimeout

	_, origRsp := info.DataKeys()
	origRspKey := append([]byte{}, origRsp.Key...)

	err := c.UpdateAllKeys(context.Background(), info.ReqSessionID)
	if err == nil {
		t.Fatal("expected an error when the phase U round trip fails")
	}

	_, newRsp := info.DataKeys()
	if !bytes.Equal(newRsp.Key, origRspKey) {
		t.Fatal("responder data key must be left untouched after a rollback")
	}
	if info.KeyUpdated() {
		t.Fatal("KeyUpdated() must stay false after a failed round")
	}
}

func TestUpdateKeySingleDirectionSkipsResponderRotation(t *testing.T) {
	tr := newFakeTransport()
	c, info := establishedSession(t, tr)
	c.rand = fixedByteReader(0x5A)

	_, origRsp := info.DataKeys()
	origRspKey := append([]byte{}, origRsp.Key...)

	sid := info.Composite()
	tr.queue(sid, keyUpdateAck(wire.KeyUpdateOpUpdateKey, 0x5A))
	tr.queue(sid, keyUpdateAck(wire.KeyUpdateOpVerifyNewKey, 0x5A))

	if err := c.UpdateKey(context.Background(), info.ReqSessionID, true); err != nil {
		t.Fatalf("UpdateKey: %v", err)
	}

	_, newRsp := info.DataKeys()
	if !bytes.Equal(newRsp.Key, origRspKey) {
		t.Fatal("single-direction UPDATE_KEY must not rotate the responder's key")
	}
}

func TestUpdateAllKeysRejectsUnknownSession(t *testing.T) {
	tr := newFakeTransport()
	c := NewContext(DefaultConfig(), localCapsWithAlgorithms(), tr, nil)
	if err := c.UpdateAllKeys(context.Background(), 1); err == nil {
		t.Fatal("expected InvalidParameter for an unknown session id")
	}
}
