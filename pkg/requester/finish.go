package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/wire"
)

// finishOnce implements FINISH for the session hr.info just entered
// Handshaking. On success info transitions Handshaking -> Established via
// EnterEstablished; on any failure the caller frees the tentative session.
func (c *Context) finishOnce(ctx context.Context, hr *handshakeResult) error {
	reqKeys, _ := hr.info.HandshakeKeys()
	verifyData := hr.h.HMAC(reqKeys.Key, hr.info.TranscriptK.Bytes())

	req := wire.FinishRequest{
		Header:     newHeader(wire.CodeFinish, 0, 0),
		VerifyData: verifyData,
	}
	reqBytes := req.Encode()

	if err := hr.info.TranscriptK.Append(reqBytes); err != nil {
		return retry.Wrap("finish", retry.DeviceError, err)
	}

	handshakeInClear := c.PeerCapabilities()&wire.CapHandshakeInTheClear != 0
	rspBytes, err := c.sendAndClassify(ctx, "finish", hr.info.Composite(), reqBytes, wire.CodeFinishRsp)
	if err != nil {
		return err
	}
	if handshakeInClear {
		return c.completeFinish(hr, nil)
	}

	rsp, err := wire.DecodeFinishResponse(rspBytes, hr.h.Size())
	if err != nil {
		return retry.Wrap("finish", retry.DeviceError, err)
	}
	_, rspKeys := hr.info.HandshakeKeys()
	if !hr.h.VerifyHMAC(rspKeys.Key, hr.info.TranscriptK.Bytes(), rsp.VerifyData) {
		return retry.New("finish", retry.SecurityViolation)
	}
	if err := hr.info.TranscriptK.Append(rsp.VerifyData); err != nil {
		return retry.Wrap("finish", retry.DeviceError, err)
	}
	return c.completeFinish(hr, rsp.VerifyData)
}

func (c *Context) completeFinish(hr *handshakeResult, _ []byte) error {
	keySize, ivSize, err := c.aeadSizes()
	if err != nil {
		return retry.Wrap("finish", retry.Unsupported, err)
	}
	th2 := hr.h.Sum(hr.info.TranscriptK.Bytes())
	if err := hr.info.EnterEstablished(hr.secret, th2, keySize, ivSize); err != nil {
		return retry.Wrap("finish", retry.DeviceError, err)
	}
	c.debugf("finish: session=%#x established", hr.info.Composite())
	return nil
}
