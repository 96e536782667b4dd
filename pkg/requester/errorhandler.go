package requester

import (
	"context"
	"errors"
	"time"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// sendAndClassify sends req, waits for the reply, and either returns the
// raw response bytes (when its code matches expectedCode) or a classified
// *retry.Error (§4.F, §7). ERROR{ResponseNotReady} is handled internally
// via RESPOND_IF_READY polling and never surfaced to the caller; every
// other ERROR code maps to the Kind table in §4.F.
func (c *Context) sendAndClassify(ctx context.Context, op string, sessionID uint32, req []byte, expectedCode byte) ([]byte, error) {
	budget := retry.NewPollBudget(c.cfg.MaxPollBudget)
	return c.roundTripAndClassify(ctx, op, sessionID, req, expectedCode, budget)
}

func (c *Context) roundTripAndClassify(ctx context.Context, op string, sessionID uint32, req []byte, expectedCode byte, budget *retry.PollBudget) ([]byte, error) {
	rctx, cancel := c.requestCtx(ctx)
	defer cancel()

	rsp, err := RoundTrip(rctx, c.transport, sessionID, req)
	if err != nil {
		if errors.Is(err, ErrTimeout) || errors.Is(rctx.Err(), context.DeadlineExceeded) {
			return nil, retry.Wrap(op, retry.Timeout, err)
		}
		return nil, retry.Wrap(op, retry.DeviceError, err)
	}
	if len(rsp) < wire.HeaderSize {
		return nil, retry.New(op, retry.DeviceError)
	}

	if rsp[1] != wire.CodeError {
		if rsp[1] != expectedCode {
			return nil, retry.New(op, retry.DeviceError)
		}
		return rsp, nil
	}

	errRsp, err := wire.DecodeErrorResponse(rsp)
	if err != nil {
		return nil, retry.Wrap(op, retry.DeviceError, err)
	}

	switch errRsp.Code() {
	case wire.ErrorCodeResponseNotReady:
		return c.handleResponseNotReady(ctx, op, sessionID, expectedCode, errRsp, budget)
	case wire.ErrorCodeBusy:
		return nil, retry.New(op, retry.NoResponse)
	case wire.ErrorCodeRequestResync:
		c.setState(session.NotStarted)
		return nil, retry.New(op, retry.Unsupported)
	case wire.ErrorCodeDecryptError, wire.ErrorCodeSessionRequired,
		wire.ErrorCodeInvalidSession, wire.ErrorCodeSessionLimitExceed:
		c.rollbackTentativeSession(sessionID)
		return nil, retry.New(op, retry.SecurityViolation)
	default:
		return nil, retry.New(op, retry.DeviceError)
	}
}

// handleResponseNotReady sleeps for the responder-dictated interval, then
// re-sends RESPOND_IF_READY with the echoed token, counting against
// budget. The eventual non-ResponseNotReady reply is classified exactly as
// the original request's reply would have been.
func (c *Context) handleResponseNotReady(ctx context.Context, op string, sessionID uint32, expectedCode byte, errRsp *wire.ErrorResponse, budget *retry.PollBudget) ([]byte, error) {
	if !budget.Consume() {
		return nil, retry.New(op, retry.DeviceError)
	}

	rdt, err := wire.DecodeResponseNotReadyData(errRsp.ExtendedData)
	if err != nil {
		return nil, retry.Wrap(op, retry.DeviceError, err)
	}

	delay := retry.ResponseNotReadyDelay(byte(rdt.RDT), rdt.RDTExponent)
	c.sleep(delay)

	poll := wire.RespondIfReadyRequest{
		Header:       newHeader(wire.CodeRespondIfReady, rdt.RequestCode, rdt.Token),
		OriginalCode: rdt.RequestCode,
		Token:        rdt.Token,
	}
	return c.roundTripAndClassify(ctx, op, sessionID, poll.Encode(), expectedCode, budget)
}

// sleepFn is a package-level var so tests can replace it with a no-op.
var sleepFn = time.Sleep

func (c *Context) sleep(d time.Duration) { sleepFn(d) }

// rollbackTentativeSession frees a session that never completed its
// handshake when the responder reports a security-relevant error against
// it (P2: non-Success calls leave the live session set unchanged).
func (c *Context) rollbackTentativeSession(sessionID uint32) {
	if sessionID == 0 || c.sessions == nil {
		return
	}
	if info, ok := c.sessions.FindByComposite(sessionID); ok && info.State() != session.Established {
		c.sessions.Free(info.ReqSessionID)
	}
}
