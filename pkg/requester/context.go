package requester

import (
	"context"
	"crypto/rand"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/transcript"
	"github.com/spdmgo/requester/pkg/wire"
)

// CertChainValidator validates a slot's DER-concatenated certificate chain
// against whatever trust anchors the embedding configured and returns the
// leaf certificate's raw subjectPublicKey bytes (the format AsymVerify
// expects: uncompressed EC point or raw Ed25519/RSA-DER key). The core
// itself never parses ASN.1; that stays the embedding's responsibility, the
// same division of labor the teacher's ValidatePeerCertChainFunc callback
// draws for Matter NOC chains.
type CertChainValidator func(chain []byte) (leafPubKey []byte, err error)

// Context is the SPDM connection state machine of §3/§4.E: one instance
// per transport connection, holding connection_state, the negotiated
// algorithm set, cert-slot bookkeeping, the four context-wide transcript
// buffers, and the session table every KEY_EXCHANGE/PSK_EXCHANGE call
// populates.
type Context struct {
	mu sync.Mutex

	id  uuid.UUID
	cfg Config
	transport Transport
	log       logging.LeveledLogger
	rand      io.Reader

	state        session.ConnectionState
	local        LocalCapabilities
	peerCaps     uint32
	negotiated   NegotiatedAlgorithms
	algNegotiated bool

	transcripts *transcript.Set
	sessions    *session.Manager

	certChains   [8][]byte
	certLeafKeys [8][]byte
	slotMask     byte

	validator CertChainValidator

	loop *retry.Loop
}

// NewContext builds a Context ready for GetVersion. local describes what
// this requester advertises; t is the transport it speaks over.
func NewContext(cfg Config, local LocalCapabilities, t Transport, validator CertChainValidator) *Context {
	cfg = cfg.withDefaults()
	c := &Context{
		id:          uuid.New(),
		cfg:         cfg,
		transport:   t,
		local:       local,
		state:       session.NotStarted,
		transcripts: transcript.NewSet(cfg.TranscriptBufferCap),
		validator:   validator,
		rand:        cfg.Rand,
		loop:        retry.NewLoop(cfg.RetryTimes),
	}
	if c.rand == nil {
		c.rand = rand.Reader
	}
	if cfg.LoggerFactory != nil {
		c.log = cfg.LoggerFactory.NewLogger("requester")
	}
	return c
}

// debugf and warnf are nil-safe logging helpers, matching the teacher's
// "if c.log != nil" convention spelled out once instead of at every call
// site.
func (c *Context) debugf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Debugf("[%s] "+format, append([]interface{}{c.id}, args...)...)
	}
}

func (c *Context) warnf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Warnf("[%s] "+format, append([]interface{}{c.id}, args...)...)
	}
}

// ID returns this connection's process-scoped correlation identifier, for
// embedders that fan log lines from several concurrent Contexts into one
// stream.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// State returns the current connection_state.
func (c *Context) State() session.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// requireState returns Unsupported unless the connection has reached at
// least min, the guard every procedure opens with (I1/I2-adjacent: a
// procedure cannot run out of order).
func (c *Context) requireState(op string, min session.ConnectionState) error {
	c.mu.Lock()
	cur := c.state
	c.mu.Unlock()
	if !cur.AtLeast(min) {
		return retry.New(op, retry.Unsupported)
	}
	return nil
}

func (c *Context) setState(s session.ConnectionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// requestCtx derives a per-round-trip context bounded by RequestTimeout,
// the "transport-defined blocking or non-blocking with Timeout return"
// suspension point of §5.
func (c *Context) requestCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.RequestTimeout)
}

// wireVersion is fixed at 0x11 (SPDM 1.1) for every request this
// requester builds; responders that only support 1.0 will reject it with
// InvalidRequest, surfaced as DeviceError.
const wireVersion = 0x11

func newHeader(code byte, p1, p2 byte) wire.Header {
	return wire.Header{Version: wireVersion, Code: code, Param1: p1, Param2: p2}
}

// ensureSessionManager lazily creates the session table once algorithms
// are negotiated, since it is keyed by the negotiated base-hash.
func (c *Context) ensureSessionManager() (*session.Manager, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.algNegotiated {
		return nil, retry.New("session", retry.Unsupported)
	}
	if c.sessions == nil {
		c.sessions = session.NewManager(c.cfg.SessionMaxCount, c.negotiated.BaseHash, c.cfg.TranscriptBufferCap)
	}
	return c.sessions, nil
}

// aeadSizes returns the negotiated AEAD suite's key and nonce sizes, used
// to size handshake/data key derivation.
func (c *Context) aeadSizes() (keySize, ivSize int, err error) {
	a, err := crypto.NewAEAD(c.negotiated.AEADSuite)
	if err != nil {
		return 0, 0, err
	}
	return a.KeySize(), a.NonceSize(), nil
}

// hash returns a crypto.Hash for the negotiated base-hash algorithm.
func (c *Context) hash() (crypto.Hash, error) {
	return crypto.NewHash(c.negotiated.BaseHash)
}
