package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/transcript"
	"github.com/spdmgo/requester/pkg/wire"
)

// NegotiateAlgorithms implements NEGOTIATE_ALGORITHMS: the requester
// proposes one candidate per category from LocalCapabilities and the
// responder must echo back exactly one per category (§3). The chosen set
// is fixed for the remaining lifetime of the connection.
func (c *Context) NegotiateAlgorithms(ctx context.Context) (NegotiatedAlgorithms, error) {
	if err := c.requireState("negotiate_algorithms", session.AfterCapabilities); err != nil {
		return NegotiatedAlgorithms{}, err
	}
	if len(c.local.SupportedHashes) == 0 || len(c.local.SupportedAsyms) == 0 ||
		len(c.local.SupportedDHE) == 0 || len(c.local.SupportedAEAD) == 0 {
		return NegotiatedAlgorithms{}, retry.New("negotiate_algorithms", retry.InvalidParameter)
	}

	var out NegotiatedAlgorithms
	err := c.loop.Do("negotiate_algorithms", func(attempt int) error {
		n, err := c.negotiateAlgorithmsOnce(ctx)
		if err != nil {
			return err
		}
		out = n
		return nil
	})
	return out, err
}

func (c *Context) negotiateAlgorithmsOnce(ctx context.Context) (NegotiatedAlgorithms, error) {
	bufA := c.transcripts.Get(transcript.A)

	proposal := NegotiatedAlgorithms{
		BaseHash:        c.local.SupportedHashes[0],
		BaseAsym:        c.local.SupportedAsyms[0],
		MeasurementHash: wire.MeasHashTypeTCB,
		DHEGroup:        c.local.SupportedDHE[0],
		AEADSuite:       c.local.SupportedAEAD[0],
		KeySchedule:     0,
	}
	hashB, asymB, dheB, aeadB, ksB := proposal.wireBytes()
	req := wire.NegotiateAlgorithmsRequest{
		Header:          newHeader(wire.CodeNegotiateAlgs, 0, 0),
		BaseHash:        hashB,
		BaseAsym:        asymB,
		MeasurementHash: proposal.MeasurementHash,
		DHEGroup:        dheB,
		AEADSuite:       aeadB,
		KeySchedule:     ksB,
	}
	reqBytes := req.Encode()

	rspBytes, err := c.sendAndClassify(ctx, "negotiate_algorithms", 0, reqBytes, wire.CodeAlgorithms)
	if err != nil {
		return NegotiatedAlgorithms{}, err
	}
	rsp, err := wire.DecodeAlgorithmsResponse(rspBytes)
	if err != nil {
		return NegotiatedAlgorithms{}, retry.Wrap("negotiate_algorithms", retry.DeviceError, err)
	}

	negotiated := NegotiatedAlgorithms{
		BaseHash:        crypto.HashAlg(rsp.BaseHash),
		BaseAsym:        crypto.AsymAlg(rsp.BaseAsym),
		MeasurementHash: rsp.MeasurementHash,
		DHEGroup:        crypto.DHEGroup(rsp.DHEGroup),
		AEADSuite:       crypto.AEADAlg(rsp.AEADSuite),
		KeySchedule:     rsp.KeySchedule,
	}
	if !c.offered(negotiated) {
		return NegotiatedAlgorithms{}, retry.New("negotiate_algorithms", retry.SecurityViolation)
	}

	checkpoint := bufA.Len()
	if err := bufA.Append(reqBytes); err != nil {
		return NegotiatedAlgorithms{}, retry.Wrap("negotiate_algorithms", retry.DeviceError, err)
	}
	if err := bufA.Append(rspBytes); err != nil {
		bufA.TruncateTo(checkpoint)
		return NegotiatedAlgorithms{}, retry.Wrap("negotiate_algorithms", retry.DeviceError, err)
	}

	c.mu.Lock()
	c.negotiated = negotiated
	c.algNegotiated = true
	c.mu.Unlock()
	c.setState(session.Negotiated)
	c.debugf("negotiate_algorithms: hash=%v asym=%v dhe=%v aead=%v",
		negotiated.BaseHash, negotiated.BaseAsym, negotiated.DHEGroup, negotiated.AEADSuite)
	return negotiated, nil
}

// offered reports whether the responder's base hash, base asym, DHE group
// and AEAD suite each appear in this requester's LocalCapabilities lists,
// rejecting a responder that chooses an algorithm this requester does not
// support. The measurement-hash and key-schedule fields are not checked.
func (c *Context) offered(n NegotiatedAlgorithms) bool {
	return containsHash(c.local.SupportedHashes, n.BaseHash) &&
		containsAsym(c.local.SupportedAsyms, n.BaseAsym) &&
		containsDHE(c.local.SupportedDHE, n.DHEGroup) &&
		containsAEAD(c.local.SupportedAEAD, n.AEADSuite)
}

func containsHash(set []crypto.HashAlg, v crypto.HashAlg) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsAsym(set []crypto.AsymAlg, v crypto.AsymAlg) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsDHE(set []crypto.DHEGroup, v crypto.DHEGroup) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsAEAD(set []crypto.AEADAlg, v crypto.AEADAlg) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
