package requester

import (
	"context"
	"sync"
)

// fakeTransport is an in-memory Transport driven by a per-session-id queue
// of canned replies, letting each test script exactly the bytes a fake
// responder would have sent back.
type fakeTransport struct {
	mu      sync.Mutex
	replies map[uint32][][]byte
	sent    [][]byte
	sendErr error
	recvErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(map[uint32][][]byte)}
}

func (t *fakeTransport) queue(sessionID uint32, rsp []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies[sessionID] = append(t.replies[sessionID], rsp)
}

func (t *fakeTransport) SendRequest(ctx context.Context, sessionID uint32, req []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, req)
	return t.sendErr
}

func (t *fakeTransport) ReceiveResponse(ctx context.Context, sessionID uint32) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recvErr != nil {
		return nil, t.recvErr
	}
	q := t.replies[sessionID]
	if len(q) == 0 {
		return nil, ErrTimeout
	}
	rsp := q[0]
	t.replies[sessionID] = q[1:]
	return rsp, nil
}
