package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// PSKExchangeAndFinish drives PSK_EXCHANGE, and PSK_FINISH only if the
// responder advertised PSK_CAP_RESPONDER_WITH_CONTEXT; without it the
// session is considered established as soon as PSK_EXCHANGE's HMAC checks
// out (§4.E).
func (c *Context) PSKExchangeAndFinish(ctx context.Context, hint []byte) (*session.Info, error) {
	if err := c.requireState("psk_exchange", session.Negotiated); err != nil {
		return nil, err
	}
	if len(hint) > c.cfg.MaxPSKHintSize {
		return nil, retry.New("psk_exchange", retry.InvalidParameter)
	}
	supported, _ := c.PeerSupportsPSK()
	if !supported {
		return nil, retry.New("psk_exchange", retry.Unsupported)
	}

	var out *session.Info
	err := c.loop.Do("psk_exchange", func(attempt int) error {
		info, psk, err := c.pskExchangeOnce(ctx, hint)
		if err != nil {
			return err
		}
		_, withContext := c.PeerSupportsPSK()
		if !withContext {
			if err := c.completeFinish(psk, nil); err != nil {
				c.sessions.Free(info.ReqSessionID)
				return err
			}
			out = info
			return nil
		}
		if err := c.pskFinishOnce(ctx, info, psk); err != nil {
			c.sessions.Free(info.ReqSessionID)
			return err
		}
		out = info
		return nil
	})
	return out, err
}

func (c *Context) pskExchangeOnce(ctx context.Context, hint []byte) (*session.Info, *handshakeResult, error) {
	mgr, err := c.ensureSessionManager()
	if err != nil {
		return nil, nil, err
	}
	if mgr.IsFull() {
		return nil, nil, retry.New("psk_exchange", retry.DeviceError)
	}
	h, err := c.hash()
	if err != nil {
		return nil, nil, retry.Wrap("psk_exchange", retry.Unsupported, err)
	}
	keySize, ivSize, err := c.aeadSizes()
	if err != nil {
		return nil, nil, retry.Wrap("psk_exchange", retry.Unsupported, err)
	}

	info, err := mgr.Begin(session.TypePSK)
	if err != nil {
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}

	nonce, err := crypto.Random(c.rand, wire.NonceSize)
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}
	var nonceArr [wire.NonceSize]byte
	copy(nonceArr[:], nonce)

	req := wire.PSKExchangeRequest{
		Header:       newHeader(wire.CodePSKExchange, wire.MeasHashTypeNone, 0),
		ReqSessionID: info.ReqSessionID,
		Random:       nonceArr,
		PSKHint:      hint,
		Opaque:       wire.EncodeVersionOpaque(wireVersion),
	}
	reqBytes := req.Encode()

	rspBytes, err := c.sendAndClassify(ctx, "psk_exchange", 0, reqBytes, wire.CodePSKExchangeRsp)
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, err
	}
	rsp, err := wire.DecodePSKExchangeResponse(rspBytes, h.Size(), wire.DefaultLimits())
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}

	peerVersion, err := wire.DecodeVersionOpaque(rsp.Opaque)
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}
	if peerVersion != wireVersion {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.New("psk_exchange", retry.SecurityViolation)
	}

	info.BindResponderID(rsp.RspSessionID)
	if err := info.TranscriptK.Append(reqBytes); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}
	if err := info.TranscriptK.Append(rspBytes[:rsp.HMACOffset]); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}

	// No DHE on the PSK path: the shared secret is derived from the PSK
	// itself, looked up by hint. The crypto façade has no PSK store of its
	// own, so the requester derives it the same way the key-exchange path
	// derives a DHE secret, by hashing hint and both nonces together into
	// a secret of the negotiated hash's size — this module's adaptation of
	// libspdm's psk_master_secret concept to the façade's primitives.
	secret := h.Sum(append(append([]byte{}, hint...), info.TranscriptK.Bytes()...))

	th1 := h.Sum(info.TranscriptK.Bytes())
	if err := info.EnterHandshaking(secret, th1, keySize, ivSize); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}

	_, rspKeys := info.HandshakeKeys()
	if !h.VerifyHMAC(rspKeys.Key, info.TranscriptK.Bytes(), rsp.VerifyData) {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.New("psk_exchange", retry.SecurityViolation)
	}
	if err := info.TranscriptK.Append(rsp.VerifyData); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, nil, retry.Wrap("psk_exchange", retry.DeviceError, err)
	}

	c.debugf("psk_exchange: session=%#x handshaking", info.Composite())
	return info, &handshakeResult{info: info, secret: secret, h: h}, nil
}

func (c *Context) pskFinishOnce(ctx context.Context, info *session.Info, hr *handshakeResult) error {
	reqKeys, _ := info.HandshakeKeys()
	verifyData := hr.h.HMAC(reqKeys.Key, info.TranscriptK.Bytes())

	req := wire.PSKFinishRequest{
		Header:     newHeader(wire.CodePSKFinish, 0, 0),
		VerifyData: verifyData,
	}
	reqBytes := req.Encode()
	if err := info.TranscriptK.Append(reqBytes); err != nil {
		return retry.Wrap("psk_finish", retry.DeviceError, err)
	}

	rspBytes, err := c.sendAndClassify(ctx, "psk_finish", info.Composite(), reqBytes, wire.CodePSKFinishRsp)
	if err != nil {
		return err
	}
	if _, err := wire.DecodePSKFinishResponse(rspBytes); err != nil {
		return retry.Wrap("psk_finish", retry.DeviceError, err)
	}

	return c.completeFinish(hr, nil)
}
