package requester

import (
	"context"
	"testing"

	"github.com/spdmgo/requester/pkg/wire"
)

func TestHeartbeatHappyPath(t *testing.T) {
	tr := newFakeTransport()
	c, info := establishedSession(t, tr)

	ack := wire.NewWriter(wire.Header{Version: wireVersion, Code: wire.CodeHeartbeatAck}).Bytes()
	tr.queue(info.Composite(), ack)

	if err := c.Heartbeat(context.Background(), info.ReqSessionID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
}

func TestHeartbeatUnknownSession(t *testing.T) {
	tr := newFakeTransport()
	c := NewContext(DefaultConfig(), localCapsWithAlgorithms(), tr, nil)

	if err := c.Heartbeat(context.Background(), 42); err == nil {
		t.Fatal("expected InvalidParameter for an unknown session id")
	}
}

func TestHeartbeatRequiresEstablished(t *testing.T) {
	tr := newFakeTransport()
	c, info := establishedSession(t, tr)
	info.Terminate()

	if err := c.Heartbeat(context.Background(), info.ReqSessionID); err == nil {
		t.Fatal("expected Unsupported once the session has been terminated")
	}
}
