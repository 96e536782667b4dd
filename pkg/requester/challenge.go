package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/transcript"
	"github.com/spdmgo/requester/pkg/wire"
)

// wildcardSlot asks the responder to pick whichever slot it used for
// CHALLENGE's certificate-chain hash on its own, rather than pinning one.
const wildcardSlot = 0xFF

// Challenge implements the CHALLENGE exchange against slot (or wildcardSlot),
// verifying the responder's signature over transcript buffer C against the
// leaf key GetCertificate cached for that slot. A successful call advances
// connection_state to Authenticated.
func (c *Context) Challenge(ctx context.Context, slot int, measHashType byte) (*wire.ChallengeAuthResponse, error) {
	if err := c.requireState("challenge", session.AfterCertificate); err != nil {
		return nil, err
	}
	if slot != wildcardSlot && (slot < 0 || slot > 7) {
		return nil, retry.New("challenge", retry.InvalidParameter)
	}
	if measHashType != wire.MeasHashTypeNone && measHashType != wire.MeasHashTypeTCB &&
		measHashType != wire.MeasHashTypeAll {
		return nil, retry.New("challenge", retry.InvalidParameter)
	}

	var out *wire.ChallengeAuthResponse
	err := c.loop.Do("challenge", func(attempt int) error {
		rsp, err := c.challengeOnce(ctx, slot, measHashType)
		if err != nil {
			return err
		}
		out = rsp
		return nil
	})
	return out, err
}

func (c *Context) challengeOnce(ctx context.Context, slot int, measHashType byte) (*wire.ChallengeAuthResponse, error) {
	h, err := c.hash()
	if err != nil {
		return nil, retry.Wrap("challenge", retry.Unsupported, err)
	}
	sigSize, err := crypto.SigSize(c.negotiated.BaseAsym)
	if err != nil {
		return nil, retry.Wrap("challenge", retry.Unsupported, err)
	}

	nonce, err := crypto.Random(c.rand, wire.NonceSize)
	if err != nil {
		return nil, retry.Wrap("challenge", retry.DeviceError, err)
	}

	bufC := c.transcripts.Get(transcript.C)
	bufC.Reset()

	var nonceArr [wire.NonceSize]byte
	copy(nonceArr[:], nonce)
	req := wire.ChallengeRequest{
		Header: newHeader(wire.CodeChallenge, byte(slot), measHashType),
		Nonce:  nonceArr,
	}
	reqBytes := req.Encode()

	rspBytes, err := c.sendAndClassify(ctx, "challenge", 0, reqBytes, wire.CodeChallengeAuth)
	if err != nil {
		return nil, err
	}

	hasMeasSummary := measHashType != wire.MeasHashTypeNone
	rsp, err := wire.DecodeChallengeAuthResponse(rspBytes, h.Size(), sigSize, wire.DefaultLimits(), hasMeasSummary)
	if err != nil {
		return nil, retry.Wrap("challenge", retry.DeviceError, err)
	}

	resolvedSlot := slot
	if slot == wildcardSlot {
		resolvedSlot = lowestSetBit(rsp.SlotMaskLowNibble())
		if resolvedSlot < 0 {
			return nil, retry.New("challenge", retry.SecurityViolation)
		}
	}
	c.mu.Lock()
	key := c.certLeafKeys[resolvedSlot]
	c.mu.Unlock()
	if key == nil {
		return nil, retry.New("challenge", retry.SecurityViolation)
	}

	// I5: the signature covers buffer C, which holds the request and the
	// response up to but not including the signature field.
	if err := bufC.Append(reqBytes); err != nil {
		return nil, retry.Wrap("challenge", retry.DeviceError, err)
	}
	if err := bufC.Append(rspBytes[:rsp.SigOffset]); err != nil {
		bufC.Reset()
		return nil, retry.Wrap("challenge", retry.DeviceError, err)
	}

	digest := c.transcriptDigest(h)
	ok, err := crypto.AsymVerify(c.negotiated.BaseAsym, key, digest, rsp.Signature)
	if err != nil {
		bufC.Reset()
		return nil, retry.Wrap("challenge", retry.SecurityViolation, err)
	}
	if !ok {
		bufC.Reset()
		return nil, retry.New("challenge", retry.SecurityViolation)
	}

	if rsp.BasicMutAuthRequested() {
		if err := c.respondToMutAuth(ctx, rsp); err != nil {
			return nil, err
		}
	}

	c.setState(session.Authenticated)
	c.debugf("challenge: slot=%d authenticated", resolvedSlot)
	return rsp, nil
}

// transcriptDigest hashes transcript buffer C, the message the responder's
// signature is computed over.
func (c *Context) transcriptDigest(h crypto.Hash) []byte {
	return h.Sum(c.transcripts.Get(transcript.C).Bytes())
}

func lowestSetBit(mask byte) int {
	for i := 0; i < 8; i++ {
		if mask&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// respondToMutAuth handles a responder's request for basic mutual
// authentication. The encapsulated-request loop is not implemented: it
// always returns Unsupported, so a responder that sets the bit gets refused
// rather than silently ignored, and the connection is not authenticated.
func (c *Context) respondToMutAuth(ctx context.Context, rsp *wire.ChallengeAuthResponse) error {
	return retry.New("challenge", retry.Unsupported)
}
