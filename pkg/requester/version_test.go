package requester

import (
	"context"
	"testing"

	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

func testContext(t *testing.T, tr *fakeTransport) *Context {
	t.Helper()
	local := LocalCapabilities{Capabilities: 0x1234}
	return NewContext(DefaultConfig(), local, tr, func(chain []byte) ([]byte, error) {
		return []byte("leaf-pubkey"), nil
	})
}

func encodeVersionResponse(versions []wire.VersionEntry) []byte {
	w := wire.NewWriter(wire.Header{Version: 0x11, Code: wire.CodeVersion})
	w.U8(0)
	w.U8(byte(len(versions)))
	for _, v := range versions {
		w.U8(v.Alpha<<4 | v.UpdateVersion)
		w.U8(v.Major<<4 | v.Minor)
	}
	return w.Bytes()
}

func TestGetVersionSuccess(t *testing.T) {
	tr := newFakeTransport()
	tr.queue(0, encodeVersionResponse([]wire.VersionEntry{{Major: 1, Minor: 1}}))
	c := testContext(t, tr)

	versions, err := c.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if len(versions) != 1 || versions[0].Major != 1 || versions[0].Minor != 1 {
		t.Fatalf("unexpected versions: %+v", versions)
	}
	if c.State() != session.AfterVersion {
		t.Fatalf("state = %v, want AfterVersion", c.State())
	}
}

func TestGetVersionTimeoutNotRetried(t *testing.T) {
	tr := newFakeTransport() // no reply queued -> ErrTimeout
	c := testContext(t, tr)

	_, err := c.GetVersion(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(tr.sent) != 1 {
		t.Fatalf("sent %d requests, want exactly 1 (Timeout must not retry)", len(tr.sent))
	}
}
