package requester

import (
	"context"
	"testing"

	"github.com/spdmgo/requester/pkg/wire"
)

func TestEndSessionHappyPath(t *testing.T) {
	tr := newFakeTransport()
	c, info := establishedSession(t, tr)
	reqID := info.ReqSessionID

	ack := wire.NewWriter(wire.Header{Version: wireVersion, Code: wire.CodeEndSessionAck}).Bytes()
	tr.queue(info.Composite(), ack)

	if err := c.EndSession(context.Background(), reqID, 0); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if _, ok := c.sessionByReqID(reqID); ok {
		t.Fatal("session must be freed from the table after EndSession")
	}
}

// TestEndSessionFreesOnFailure covers the documented always-free behavior:
// even when the responder's ACK never arrives, the session must be removed
// from the table so it cannot leak.
func TestEndSessionFreesOnFailure(t *testing.T) {
	tr := newFakeTransport()
	c, info := establishedSession(t, tr)
	reqID := info.ReqSessionID
	tr.sendErr = ErrTimeout

	if err := c.EndSession(context.Background(), reqID, 0); err == nil {
		t.Fatal("expected an error when the round trip fails")
	}
	if _, ok := c.sessionByReqID(reqID); ok {
		t.Fatal("session must still be freed from the table after a failed round trip")
	}
}

func TestEndSessionUnknownSession(t *testing.T) {
	tr := newFakeTransport()
	c := NewContext(DefaultConfig(), localCapsWithAlgorithms(), tr, nil)

	if err := c.EndSession(context.Background(), 7, 0); err == nil {
		t.Fatal("expected InvalidParameter for an unknown session id")
	}
}
