package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// EndSession implements END_SESSION. The session is freed from the table
// regardless of whether the responder's ACK arrives cleanly: once the
// requester has decided to tear a session down, leaving it live locally
// after a failed round trip would just leak it (P2 only protects sessions
// that never reached Established; a torn-down Established session is gone
// either way).
func (c *Context) EndSession(ctx context.Context, reqSessionID uint16, endAttributes byte) error {
	info, ok := c.sessionByReqID(reqSessionID)
	if !ok {
		return retry.New("end_session", retry.InvalidParameter)
	}
	if info.State() != session.Established {
		return retry.New("end_session", retry.Unsupported)
	}

	err := c.loop.Do("end_session", func(attempt int) error {
		req := wire.EndSessionRequest{Header: newHeader(wire.CodeEndSession, endAttributes, 0)}
		rspBytes, err := c.sendAndClassify(ctx, "end_session", info.Composite(), req.Encode(), wire.CodeEndSessionAck)
		if err != nil {
			return err
		}
		if _, err := wire.DecodeEndSessionAckResponse(rspBytes); err != nil {
			return retry.Wrap("end_session", retry.DeviceError, err)
		}
		return nil
	})

	c.mu.Lock()
	mgr := c.sessions
	c.mu.Unlock()
	if mgr != nil {
		mgr.Free(reqSessionID)
	}
	c.debugf("end_session: session=%#x freed", info.Composite())
	return err
}
