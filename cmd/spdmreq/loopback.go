package main

import (
	"context"
	"errors"

	"github.com/spdmgo/requester/pkg/requester"
	"github.com/spdmgo/requester/pkg/wire"
)

// loopbackTransport pairs a requester.Context with an in-process responder
// goroutine over unbuffered channels, standing in for whatever real
// transport (USB, MCTP-over-I2C, TCP) a deployment would plug in instead.
type loopbackTransport struct {
	reqCh  chan []byte
	respCh chan []byte
	done   chan struct{}
}

func newLoopbackTransport() *loopbackTransport {
	t := &loopbackTransport{
		reqCh:  make(chan []byte),
		respCh: make(chan []byte),
		done:   make(chan struct{}),
	}
	go t.serve()
	return t
}

func (t *loopbackTransport) SendRequest(ctx context.Context, sessionID uint32, req []byte) error {
	select {
	case t.reqCh <- req:
		return nil
	case <-ctx.Done():
		return requester.ErrTimeout
	case <-t.done:
		return errors.New("spdmreq: transport closed")
	}
}

func (t *loopbackTransport) ReceiveResponse(ctx context.Context, sessionID uint32) ([]byte, error) {
	select {
	case rsp := <-t.respCh:
		return rsp, nil
	case <-ctx.Done():
		return nil, requester.ErrTimeout
	case <-t.done:
		return nil, errors.New("spdmreq: transport closed")
	}
}

func (t *loopbackTransport) Close() {
	close(t.done)
}

// serve is a minimal stand-in responder: enough of the unsecured exchanges
// to make the demo's happy path observable, not a conformance reference.
func (t *loopbackTransport) serve() {
	for {
		select {
		case req := <-t.reqCh:
			rsp := t.respond(req)
			select {
			case t.respCh <- rsp:
			case <-t.done:
				return
			}
		case <-t.done:
			return
		}
	}
}

func (t *loopbackTransport) respond(req []byte) []byte {
	if len(req) < wire.HeaderSize {
		return nil
	}
	switch req[1] {
	case wire.CodeGetVersion:
		w := wire.NewWriter(wire.Header{Version: 0x11, Code: wire.CodeVersion})
		w.U8(0).U8(1)
		w.U8(0).U8(0x11) // SPDM 1.1
		return w.Bytes()
	case wire.CodeGetCapabilities:
		w := wire.NewWriter(wire.Header{Version: 0x11, Code: wire.CodeCapabilities})
		w.U8(12).U16(0).U32(wire.CapCHAL | wire.CapMeas | wire.CapKeyExchange)
		return w.Bytes()
	case wire.CodeNegotiateAlgs:
		r := wire.NewReader(req)
		asym, _ := r.U8()
		hash, _ := r.U8()
		dhe, _ := r.U8()
		aead, _ := r.U8()
		ks, _ := r.U8()
		w := wire.NewWriter(wire.Header{Version: 0x11, Code: wire.CodeAlgorithms})
		w.U8(asym).U8(hash).U8(dhe).U8(aead).U8(ks).U8(wire.MeasHashTypeTCB)
		return w.Bytes()
	case wire.CodeGetDigests:
		w := wire.NewWriter(wire.Header{Version: 0x11, Code: wire.CodeDigests, Param2: 0x01})
		w.Fixed(make([]byte, 48)) // one SHA-384-sized digest in slot 0
		return w.Bytes()
	default:
		w := wire.NewWriter(wire.Header{Version: 0x11, Code: wire.CodeError, Param1: wire.ErrorCodeUnsupportedRequest})
		return w.Bytes()
	}
}
