package session

import (
	"sync"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/transcript"
)

// Info is the per-session state named SessionInfo in §3: identifiers,
// lifecycle state, the handshake/data key schedule, and the transcript K
// buffer those keys are derived from.
type Info struct {
	mu sync.Mutex

	ReqSessionID uint16
	RspSessionID uint16

	Type  Type
	state State

	SessionPolicy   byte // v1.2+ only
	HeartbeatPeriod uint32 // seconds; 0 = disabled

	// TranscriptK accumulates the bytes bound into TH1/TH2 (§4.B). It is
	// owned by the session rather than the context-wide buffer Set because
	// it is scoped to one session's lifetime.
	TranscriptK *transcript.Buffer

	hashAlg crypto.HashAlg

	handshakeReq crypto.DirectionalKeys
	handshakeRsp crypto.DirectionalKeys
	dataReq      crypto.DirectionalKeys
	dataRsp      crypto.DirectionalKeys

	reqSeq uint64
	rspSeq uint64

	keyUpdate keyUpdateState
}

// NewInfo creates a tentative session in state NotStarted, as happens when
// a KEY_EXCHANGE request is sent or a PSK_EXCHANGE response is accepted
// (§3 Lifecycle).
func NewInfo(reqSessionID uint16, typ Type, hashAlg crypto.HashAlg, transcriptCap int) *Info {
	return &Info{
		ReqSessionID: reqSessionID,
		Type:         typ,
		state:        SessionNotStarted,
		TranscriptK:  transcript.NewBuffer(transcriptCap),
		hashAlg:      hashAlg,
	}
}

// Composite returns the 32-bit session_id (§6): high 16 bits requester,
// low 16 bits responder.
func (i *Info) Composite() uint32 {
	return uint32(i.ReqSessionID)<<16 | uint32(i.RspSessionID)
}

func (i *Info) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Info) setState(s State) {
	i.mu.Lock()
	i.state = s
	i.mu.Unlock()
}

// BindResponderID records the responder's chosen half once its reply
// arrives.
func (i *Info) BindResponderID(rspSessionID uint16) {
	i.mu.Lock()
	i.RspSessionID = rspSessionID
	i.mu.Unlock()
}

// EnterHandshaking derives and installs the handshake-phase keys from TH1,
// transitioning NotStarted -> Handshaking (§4.D).
func (i *Info) EnterHandshaking(sharedSecret, th1 []byte, keySize, ivSize int) error {
	h, err := crypto.NewHash(i.hashAlg)
	if err != nil {
		return err
	}
	keys, err := crypto.DeriveHandshakeKeys(h, sharedSecret, th1, keySize, ivSize)
	if err != nil {
		return err
	}
	i.mu.Lock()
	i.handshakeReq = keys.Request
	i.handshakeRsp = keys.Response
	i.state = Handshaking
	i.mu.Unlock()
	return nil
}

// EnterEstablished derives and installs the data-phase keys from TH2,
// transitioning Handshaking -> Established (§4.D). The reused sharedSecret
// argument is the same DHE/PSK secret used for TH1; only the transcript
// hash advances between the two derivations.
func (i *Info) EnterEstablished(sharedSecret, th2 []byte, keySize, ivSize int) error {
	h, err := crypto.NewHash(i.hashAlg)
	if err != nil {
		return err
	}
	keys, err := crypto.DeriveDataKeys(h, sharedSecret, th2, keySize, ivSize)
	if err != nil {
		return err
	}
	i.mu.Lock()
	i.dataReq = keys.Request
	i.dataRsp = keys.Response
	i.state = Established
	i.reqSeq = 0
	i.rspSeq = 0
	i.mu.Unlock()
	return nil
}

// Terminate moves the session to Terminated and zeroizes its key material.
// Callers must still Table.Remove the session afterward.
func (i *Info) Terminate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = Terminated
	zero(i.handshakeReq.Key)
	zero(i.handshakeRsp.Key)
	zero(i.dataReq.Key)
	zero(i.dataRsp.Key)
}

func zero(b []byte) {
	for idx := range b {
		b[idx] = 0
	}
}

// DataKeys returns the current request/response data-phase keys. Valid
// only once State() == Established.
func (i *Info) DataKeys() (req, rsp crypto.DirectionalKeys) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dataReq, i.dataRsp
}

// HandshakeKeys returns the request/response handshake-phase keys derived
// from TH1, valid once State() has reached Handshaking. FINISH's HMAC
// checks run under these keys, before EnterEstablished replaces them.
func (i *Info) HandshakeKeys() (req, rsp crypto.DirectionalKeys) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.handshakeReq, i.handshakeRsp
}

// NextRequestSeq returns the next outgoing sequence number and increments
// the counter, used to build the AEAD nonce for an outgoing message.
func (i *Info) NextRequestSeq() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	seq := i.reqSeq
	i.reqSeq++
	return seq
}

// HashAlg exposes the session's negotiated base-hash, needed by callers
// deriving additional key material (e.g. key update).
func (i *Info) HashAlg() crypto.HashAlg {
	return i.hashAlg
}
