package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/transcript"
	"github.com/spdmgo/requester/pkg/wire"
)

// certChunkSize bounds how much of a certificate chain is requested per
// GET_CERTIFICATE round trip.
const certChunkSize = 1024

// GetCertificate implements GET_CERTIFICATE for one slot, reassembling the
// chunked chain and running it through the configured CertChainValidator.
// The validated leaf public key is cached for CHALLENGE's signature check.
func (c *Context) GetCertificate(ctx context.Context, slot int) ([]byte, error) {
	if err := c.requireState("get_certificate", session.AfterDigests); err != nil {
		return nil, err
	}
	if slot < 0 || slot > 7 {
		return nil, retry.New("get_certificate", retry.InvalidParameter)
	}
	if c.SlotMask()&(1<<uint(slot)) == 0 {
		return nil, retry.New("get_certificate", retry.InvalidParameter)
	}

	var chain []byte
	err := c.loop.Do("get_certificate", func(attempt int) error {
		ch, err := c.getCertificateOnce(ctx, slot)
		if err != nil {
			return err
		}
		chain = ch
		return nil
	})
	return chain, err
}

func (c *Context) getCertificateOnce(ctx context.Context, slot int) ([]byte, error) {
	bufB := c.transcripts.Get(transcript.B)
	checkpoint := bufB.Len()

	var chain []byte
	offset := uint16(0)
	for {
		req := wire.GetCertificateRequest{
			Header: newHeader(wire.CodeGetCertificate, byte(slot), 0),
			Offset: offset,
			Length: certChunkSize,
		}
		reqBytes := req.Encode()

		rspBytes, err := c.sendAndClassify(ctx, "get_certificate", 0, reqBytes, wire.CodeCertificate)
		if err != nil {
			bufB.TruncateTo(checkpoint)
			return nil, err
		}
		rsp, err := wire.DecodeCertificateResponse(rspBytes, wire.DefaultLimits().MaxCertChain)
		if err != nil {
			bufB.TruncateTo(checkpoint)
			return nil, retry.Wrap("get_certificate", retry.DeviceError, err)
		}

		if err := bufB.Append(reqBytes); err != nil {
			bufB.TruncateTo(checkpoint)
			return nil, retry.Wrap("get_certificate", retry.DeviceError, err)
		}
		if err := bufB.Append(rspBytes); err != nil {
			bufB.TruncateTo(checkpoint)
			return nil, retry.Wrap("get_certificate", retry.DeviceError, err)
		}

		chain = append(chain, rsp.CertChain...)
		offset += rsp.PortionLength
		if rsp.RemainderLen == 0 {
			break
		}
	}

	leafKey, err := c.validator(chain)
	if err != nil {
		bufB.TruncateTo(checkpoint)
		return nil, retry.Wrap("get_certificate", retry.SecurityViolation, err)
	}

	c.mu.Lock()
	c.certChains[slot] = chain
	c.certLeafKeys[slot] = leafKey
	c.mu.Unlock()
	c.setState(session.AfterCertificate)
	c.debugf("get_certificate: slot=%d chain_len=%d", slot, len(chain))
	return chain, nil
}

// CertChain returns the reassembled chain for slot, or nil if it has not
// been retrieved.
func (c *Context) CertChain(slot int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot > 7 {
		return nil
	}
	return c.certChains[slot]
}
