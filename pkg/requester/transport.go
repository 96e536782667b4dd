package requester

import (
	"context"
	"errors"
)

// ErrTimeout is returned by a Transport when a send or receive exceeds its
// deadline; it maps directly to Kind Timeout and is surfaced to the caller
// immediately, never retried (§7).
var ErrTimeout = errors.New("requester: transport timeout")

// Transport is the embedding-provided send/receive pair of §6. A session
// id of 0 means "unsecured" (pre-handshake exchanges); any other value
// selects the secured-message path for that live session, with encryption
// handled by the embedding's secured-message module as the spec assumes,
// not by this package.
type Transport interface {
	// SendRequest transmits req, a fully encoded message, addressed to the
	// given session (0 = unsecured).
	SendRequest(ctx context.Context, sessionID uint32, req []byte) error

	// ReceiveResponse blocks for the matching reply, returning ErrTimeout
	// if ctx's deadline (or the transport's own) is exceeded.
	ReceiveResponse(ctx context.Context, sessionID uint32) ([]byte, error)
}

// RoundTrip sends req and waits for the reply, the single primitive every
// procedure builds on.
func RoundTrip(ctx context.Context, t Transport, sessionID uint32, req []byte) ([]byte, error) {
	if err := t.SendRequest(ctx, sessionID, req); err != nil {
		return nil, err
	}
	return t.ReceiveResponse(ctx, sessionID)
}
