package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/transcript"
	"github.com/spdmgo/requester/pkg/wire"
)

// GetDigests implements GET_DIGESTS, recording which certificate slots the
// responder has provisioned. The digest list itself is informational here;
// GetCertificate is what actually retrieves a slot's chain for validation.
func (c *Context) GetDigests(ctx context.Context) (slotMask byte, err error) {
	if err := c.requireState("get_digests", session.Negotiated); err != nil {
		return 0, err
	}
	err = c.loop.Do("get_digests", func(attempt int) error {
		m, err := c.getDigestsOnce(ctx)
		if err != nil {
			return err
		}
		slotMask = m
		return nil
	})
	return slotMask, err
}

func (c *Context) getDigestsOnce(ctx context.Context) (byte, error) {
	h, err := c.hash()
	if err != nil {
		return 0, retry.Wrap("get_digests", retry.Unsupported, err)
	}

	bufB := c.transcripts.Get(transcript.B)
	req := wire.GetDigestsRequest{Header: newHeader(wire.CodeGetDigests, 0, 0)}
	reqBytes := req.Encode()

	rspBytes, err := c.sendAndClassify(ctx, "get_digests", 0, reqBytes, wire.CodeDigests)
	if err != nil {
		return 0, err
	}
	rsp, err := wire.DecodeDigestsResponse(rspBytes, h.Size(), 8)
	if err != nil {
		return 0, retry.Wrap("get_digests", retry.DeviceError, err)
	}

	checkpoint := bufB.Len()
	if err := bufB.Append(reqBytes); err != nil {
		return 0, retry.Wrap("get_digests", retry.DeviceError, err)
	}
	if err := bufB.Append(rspBytes); err != nil {
		bufB.TruncateTo(checkpoint)
		return 0, retry.Wrap("get_digests", retry.DeviceError, err)
	}

	c.mu.Lock()
	c.slotMask = rsp.SlotMask
	c.mu.Unlock()
	c.setState(session.AfterDigests)
	c.debugf("get_digests: slot_mask=%#x", rsp.SlotMask)
	return rsp.SlotMask, nil
}

// SlotMask returns the bitmask of provisioned certificate slots observed in
// the last GetDigests call.
func (c *Context) SlotMask() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slotMask
}
