package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/transcript"
	"github.com/spdmgo/requester/pkg/wire"
)

// GetCapabilities implements GET_CAPABILITIES, requiring the connection to
// have already completed GET_VERSION. The responder's capability bitset is
// recorded for later procedures to branch on (mutual auth, PSK-with-
// context, handshake-in-the-clear, key update, heartbeat).
func (c *Context) GetCapabilities(ctx context.Context) (uint32, error) {
	if err := c.requireState("get_capabilities", session.AfterVersion); err != nil {
		return 0, err
	}
	var caps uint32
	err := c.loop.Do("get_capabilities", func(attempt int) error {
		v, err := c.getCapabilitiesOnce(ctx)
		if err != nil {
			return err
		}
		caps = v
		return nil
	})
	return caps, err
}

func (c *Context) getCapabilitiesOnce(ctx context.Context) (uint32, error) {
	bufA := c.transcripts.Get(transcript.A)

	req := wire.GetCapabilitiesRequest{
		Header:       newHeader(wire.CodeGetCapabilities, 0, 0),
		CTExponent:   c.cfg.CTExponent,
		Capabilities: c.local.Capabilities,
	}
	reqBytes := req.Encode()

	rspBytes, err := c.sendAndClassify(ctx, "get_capabilities", 0, reqBytes, wire.CodeCapabilities)
	if err != nil {
		return 0, err
	}
	rsp, err := wire.DecodeCapabilitiesResponse(rspBytes)
	if err != nil {
		return 0, retry.Wrap("get_capabilities", retry.DeviceError, err)
	}

	checkpoint := bufA.Len()
	if err := bufA.Append(reqBytes); err != nil {
		return 0, retry.Wrap("get_capabilities", retry.DeviceError, err)
	}
	if err := bufA.Append(rspBytes); err != nil {
		bufA.TruncateTo(checkpoint)
		return 0, retry.Wrap("get_capabilities", retry.DeviceError, err)
	}

	c.mu.Lock()
	c.peerCaps = rsp.Capabilities
	c.mu.Unlock()
	c.setState(session.AfterCapabilities)
	c.debugf("get_capabilities: peer=%#x", rsp.Capabilities)
	return rsp.Capabilities, nil
}

// PeerCapabilities returns the responder's advertised capability bitset,
// valid once State() is at least AfterCapabilities.
func (c *Context) PeerCapabilities() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerCaps
}

// PeerSupportsPSK reports whether PSK_EXCHANGE is available, and whether
// the responder additionally supports the WITH_CONTEXT variant; only that
// variant is followed by PSK_FINISH.
func (c *Context) PeerSupportsPSK() (supported, withContext bool) {
	caps := c.PeerCapabilities()
	return caps&wire.PSKCapResponder != 0, caps&wire.PSKCapResponderWithContext != 0
}
