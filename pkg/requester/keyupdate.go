package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// UpdateKey drives the full two-phase KEY_UPDATE dance (§4.D, §4.E) for an
// Established session: phase U rotates the data keys (requester direction
// only when singleDirection, both directions otherwise), then phase V
// (VERIFY_NEW_KEY) confirms the responder actually committed the same
// rotation before the call reports success.
//
// For UPDATE_ALL_KEYS the responder-direction key is derived before the
// request is sent but only swapped in on a matching ACK; on any failure the
// pending key is discarded and the active key is left untouched. The
// requester-direction key, by contrast, is derived and activated together
// once the ACK is in hand, since no external agreement is needed for it.
// singleDirection skips the responder-key dance entirely: UPDATE_KEY only
// ever rotates the requester's own send key.
func (c *Context) UpdateKey(ctx context.Context, reqSessionID uint16, singleDirection bool) error {
	info, ok := c.sessionByReqID(reqSessionID)
	if !ok {
		return retry.New("key_update", retry.InvalidParameter)
	}
	if info.State() != session.Established {
		return retry.New("key_update", retry.Unsupported)
	}

	return c.loop.Do("key_update", func(attempt int) error {
		if !info.KeyUpdated() {
			if err := c.keyUpdatePhaseU(ctx, info, singleDirection); err != nil {
				return err
			}
		}
		return c.keyUpdatePhaseV(ctx, info)
	})
}

// UpdateAllKeys is UpdateKey(ctx, reqSessionID, singleDirection=false), kept
// as a convenience entry point for the common both-directions case.
func (c *Context) UpdateAllKeys(ctx context.Context, reqSessionID uint16) error {
	return c.UpdateKey(ctx, reqSessionID, false)
}

func (c *Context) keyUpdatePhaseU(ctx context.Context, info *session.Info, singleDirection bool) error {
	op := byte(wire.KeyUpdateOpUpdateAllKeys)
	if singleDirection {
		op = wire.KeyUpdateOpUpdateKey
	}

	if !singleDirection {
		if err := info.BeginUpdateAllKeys(); err != nil {
			return retry.Wrap("key_update", retry.DeviceError, err)
		}
	}

	randByte, err := crypto.Random(c.rand, 1)
	if err != nil {
		if !singleDirection {
			info.RollbackResponderKey()
		}
		return retry.Wrap("key_update", retry.DeviceError, err)
	}
	req := wire.KeyUpdateRequest{Header: newHeader(wire.CodeKeyUpdate, op, randByte[0])}

	rspBytes, err := c.sendAndClassify(ctx, "key_update", info.Composite(), req.Encode(), wire.CodeKeyUpdateAck)
	if err != nil {
		if !singleDirection {
			info.RollbackResponderKey()
		}
		return err
	}
	ack, err := wire.DecodeKeyUpdateAckResponse(rspBytes)
	if err != nil {
		if !singleDirection {
			info.RollbackResponderKey()
		}
		return retry.Wrap("key_update", retry.DeviceError, err)
	}
	if ack.Header.Param1 != op || ack.Header.Param2 != randByte[0] {
		if !singleDirection {
			info.RollbackResponderKey()
		}
		return retry.New("key_update", retry.SecurityViolation)
	}

	if !singleDirection {
		info.ActivateResponderKey()
	}
	if err := info.ActivateRequesterKey(); err != nil {
		return retry.Wrap("key_update", retry.DeviceError, err)
	}
	info.MarkKeyUpdated(true)
	c.debugf("key_update: session=%#x phase U rotated (single_direction=%v)", info.Composite(), singleDirection)
	return nil
}

// keyUpdatePhaseV sends VERIFY_NEW_KEY under the freshly rotated requester
// key and requires an ACK whose param1/param2 echo the request exactly.
// Failure here is a DeviceError; it never rolls back phase U, since both
// sides have already committed the new keys by this point.
func (c *Context) keyUpdatePhaseV(ctx context.Context, info *session.Info) error {
	randByte, err := crypto.Random(c.rand, 1)
	if err != nil {
		return retry.Wrap("key_update", retry.DeviceError, err)
	}
	req := wire.KeyUpdateRequest{Header: newHeader(wire.CodeKeyUpdate, wire.KeyUpdateOpVerifyNewKey, randByte[0])}

	rspBytes, err := c.sendAndClassify(ctx, "key_update", info.Composite(), req.Encode(), wire.CodeKeyUpdateAck)
	if err != nil {
		return retry.Wrap("key_update", retry.DeviceError, err)
	}
	ack, err := wire.DecodeKeyUpdateAckResponse(rspBytes)
	if err != nil {
		return retry.Wrap("key_update", retry.DeviceError, err)
	}
	if ack.Header.Param1 != wire.KeyUpdateOpVerifyNewKey || ack.Header.Param2 != randByte[0] {
		return retry.New("key_update", retry.DeviceError)
	}
	c.debugf("key_update: session=%#x phase V verified", info.Composite())
	return nil
}

func (c *Context) sessionByReqID(reqSessionID uint16) (*session.Info, bool) {
	c.mu.Lock()
	mgr := c.sessions
	c.mu.Unlock()
	if mgr == nil {
		return nil, false
	}
	return mgr.Find(reqSessionID)
}
