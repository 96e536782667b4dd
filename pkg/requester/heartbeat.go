package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// Heartbeat implements HEARTBEAT, refreshing the watchdog deadline this
// session's caller is responsible for resetting on success (§4.G: a
// successful HEARTBEAT_ACK is the event that resets the timer, not the
// act of sending the request).
func (c *Context) Heartbeat(ctx context.Context, reqSessionID uint16) error {
	info, ok := c.sessionByReqID(reqSessionID)
	if !ok {
		return retry.New("heartbeat", retry.InvalidParameter)
	}
	if info.State() != session.Established {
		return retry.New("heartbeat", retry.Unsupported)
	}

	return c.loop.Do("heartbeat", func(attempt int) error {
		req := wire.HeartbeatRequest{Header: newHeader(wire.CodeHeartbeat, 0, 0)}
		rspBytes, err := c.sendAndClassify(ctx, "heartbeat", info.Composite(), req.Encode(), wire.CodeHeartbeatAck)
		if err != nil {
			return err
		}
		if _, err := wire.DecodeHeartbeatAckResponse(rspBytes); err != nil {
			return retry.Wrap("heartbeat", retry.DeviceError, err)
		}
		c.debugf("heartbeat: session=%#x ack", info.Composite())
		return nil
	})
}
