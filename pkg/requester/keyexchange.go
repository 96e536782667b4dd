package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// handshakeResult carries the per-attempt state keyExchangeOnce and
// finishOnce share, since both need the session Info, the shared secret
// (reused for TH1 and TH2), and the hash used to compute each.
type handshakeResult struct {
	info   *session.Info
	secret []byte
	h      crypto.Hash
}

// KeyExchangeAndFinish drives KEY_EXCHANGE followed by FINISH as one unit:
// a partially-established session with no FINISH is useless, so both steps
// share the same retry attempt and a failure at either one frees the
// tentative session before returning.
func (c *Context) KeyExchangeAndFinish(ctx context.Context, slot int, measHashType byte) (*session.Info, error) {
	if err := c.requireState("key_exchange", session.Authenticated); err != nil {
		return nil, err
	}

	var out *session.Info
	err := c.loop.Do("key_exchange", func(attempt int) error {
		hr, err := c.keyExchangeOnce(ctx, slot, measHashType)
		if err != nil {
			return err
		}
		if err := c.finishOnce(ctx, hr); err != nil {
			c.sessions.Free(hr.info.ReqSessionID)
			return err
		}
		out = hr.info
		return nil
	})
	return out, err
}

func (c *Context) keyExchangeOnce(ctx context.Context, slot int, measHashType byte) (*handshakeResult, error) {
	mgr, err := c.ensureSessionManager()
	if err != nil {
		return nil, err
	}
	if mgr.IsFull() {
		return nil, retry.New("key_exchange", retry.DeviceError)
	}

	h, err := c.hash()
	if err != nil {
		return nil, retry.Wrap("key_exchange", retry.Unsupported, err)
	}
	keySize, ivSize, err := c.aeadSizes()
	if err != nil {
		return nil, retry.Wrap("key_exchange", retry.Unsupported, err)
	}
	sigSize, err := crypto.SigSize(c.negotiated.BaseAsym)
	if err != nil {
		return nil, retry.Wrap("key_exchange", retry.Unsupported, err)
	}
	dheShareSize, err := crypto.DHEPeerShareSize(c.negotiated.DHEGroup)
	if err != nil {
		return nil, retry.Wrap("key_exchange", retry.Unsupported, err)
	}

	dhe, err := crypto.NewDHEContext(c.negotiated.DHEGroup)
	if err != nil {
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}

	info, err := mgr.Begin(session.TypeKeyExchange)
	if err != nil {
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}

	nonce, err := crypto.Random(c.rand, wire.NonceSize)
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}
	var nonceArr [wire.NonceSize]byte
	copy(nonceArr[:], nonce)

	req := wire.KeyExchangeRequest{
		Header:       newHeader(wire.CodeKeyExchange, measHashType, byte(slot)),
		ReqSessionID: info.ReqSessionID,
		Random:       nonceArr,
		DHEPublic:    dhe.Public(),
	}
	reqBytes := req.Encode()

	rspBytes, err := c.sendAndClassify(ctx, "key_exchange", 0, reqBytes, wire.CodeKeyExchangeRsp)
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, err
	}
	hasMeasSummary := measHashType != wire.MeasHashTypeNone
	rsp, err := wire.DecodeKeyExchangeResponse(rspBytes, dheShareSize, h.Size(), sigSize, h.Size(), wire.DefaultLimits(), hasMeasSummary)
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}

	secret, err := dhe.Agree(rsp.DHEPublic)
	if err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, retry.Wrap("key_exchange", retry.SecurityViolation, err)
	}

	info.BindResponderID(rsp.RspSessionID)
	if err := info.TranscriptK.Append(reqBytes); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}
	if err := info.TranscriptK.Append(rspBytes[:rsp.HMACOffset]); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}

	c.mu.Lock()
	leafKey := c.certLeafKeys[slotOrResolved(slot, rsp.SlotMask)]
	c.mu.Unlock()
	if leafKey != nil && len(rsp.Signature) > 0 {
		digest := h.Sum(info.TranscriptK.Bytes())
		ok, err := crypto.AsymVerify(c.negotiated.BaseAsym, leafKey, digest, rsp.Signature)
		if err != nil || !ok {
			mgr.Free(info.ReqSessionID)
			return nil, retry.New("key_exchange", retry.SecurityViolation)
		}
	}

	th1 := h.Sum(info.TranscriptK.Bytes())
	if err := info.EnterHandshaking(secret, th1, keySize, ivSize); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}

	_, rspKeys := info.HandshakeKeys()
	if !h.VerifyHMAC(rspKeys.Key, info.TranscriptK.Bytes(), rsp.VerifyData) {
		mgr.Free(info.ReqSessionID)
		return nil, retry.New("key_exchange", retry.SecurityViolation)
	}
	if err := info.TranscriptK.Append(rsp.VerifyData); err != nil {
		mgr.Free(info.ReqSessionID)
		return nil, retry.Wrap("key_exchange", retry.DeviceError, err)
	}

	c.debugf("key_exchange: session=%#x handshaking", info.Composite())
	return &handshakeResult{info: info, secret: secret, h: h}, nil
}

func slotOrResolved(slot int, slotMask byte) int {
	if slot != wildcardSlot {
		return slot
	}
	return lowestSetBit(slotMask)
}
