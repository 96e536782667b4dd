package requester

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"testing"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/wire"
)

// kexResponderTransport plays a minimal KEY_EXCHANGE/FINISH responder: it
// parses the requester's DHE share directly out of the request bytes it
// receives, agrees its own ephemeral ECDH keypair against it, and derives
// the same handshake keys the requester will, so its replies carry a
// VerifyData the requester's own HMAC checks accept.
type kexResponderTransport struct {
	h       crypto.Hash
	keySize int
	ivSize  int
	sigSize int
	curve   ecdh.Curve

	kexReq []byte
	finReq []byte

	built              bool
	transcriptAfterKex []byte
	handshakeRspKey    []byte
}

func newKEXResponderTransport(t *testing.T, hashAlg crypto.HashAlg, aeadAlg crypto.AEADAlg, asymAlg crypto.AsymAlg) *kexResponderTransport {
	t.Helper()
	h, err := crypto.NewHash(hashAlg)
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	aead, err := crypto.NewAEAD(aeadAlg)
	if err != nil {
		t.Fatalf("NewAEAD: %v", err)
	}
	sigSize, err := crypto.SigSize(asymAlg)
	if err != nil {
		t.Fatalf("SigSize: %v", err)
	}
	return &kexResponderTransport{h: h, keySize: aead.KeySize(), ivSize: aead.NonceSize(), sigSize: sigSize, curve: ecdh.P256()}
}

func (tr *kexResponderTransport) SendRequest(ctx context.Context, sessionID uint32, req []byte) error {
	switch req[1] {
	case wire.CodeKeyExchange:
		tr.kexReq = req
	case wire.CodeFinish:
		tr.finReq = req
	}
	return nil
}

func (tr *kexResponderTransport) ReceiveResponse(ctx context.Context, sessionID uint32) ([]byte, error) {
	if !tr.built {
		return tr.buildKexResponse()
	}
	return tr.buildFinishResponse()
}

func (tr *kexResponderTransport) buildKexResponse() ([]byte, error) {
	r := wire.NewReader(tr.kexReq)
	if _, err := r.U8(); err != nil { // session policy
		return nil, err
	}
	if _, err := r.U8(); err != nil { // reserved
		return nil, err
	}
	if _, err := r.U16(); err != nil { // req session id
		return nil, err
	}
	if _, err := r.Fixed(wire.NonceSize); err != nil {
		return nil, err
	}
	reqPubBytes, err := r.Fixed(65)
	if err != nil {
		return nil, err
	}

	responderPriv, err := tr.curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	reqPub, err := tr.curve.NewPublicKey(reqPubBytes)
	if err != nil {
		return nil, err
	}
	secret, err := responderPriv.ECDH(reqPub)
	if err != nil {
		return nil, err
	}

	w := wire.NewWriter(wire.Header{Version: wireVersion, Code: wire.CodeKeyExchangeRsp})
	w.U16(0x5678).U8(0).U8(0)
	w.Fixed(make([]byte, wire.NonceSize))
	w.Fixed(responderPriv.PublicKey().Bytes())
	w.VarField(nil)
	w.Fixed(make([]byte, tr.sigSize))
	partial := w.Bytes()

	combined := append(append([]byte{}, tr.kexReq...), partial...)
	th1 := tr.h.Sum(combined)
	keys, err := crypto.DeriveHandshakeKeys(tr.h, secret, th1, tr.keySize, tr.ivSize)
	if err != nil {
		return nil, err
	}
	tr.handshakeRspKey = keys.Response.Key

	verifyData := tr.h.HMAC(keys.Response.Key, combined)
	w.Fixed(verifyData)
	full := w.Bytes()
	tr.transcriptAfterKex = full
	tr.built = true
	return full, nil
}

func (tr *kexResponderTransport) buildFinishResponse() ([]byte, error) {
	combined := append(append([]byte{}, tr.transcriptAfterKex...), tr.finReq...)
	verifyData := tr.h.HMAC(tr.handshakeRspKey, combined)
	w := wire.NewWriter(wire.Header{Version: wireVersion, Code: wire.CodeFinishRsp})
	w.Fixed(verifyData)
	return w.Bytes(), nil
}

func TestKeyExchangeAndFinishHappyPath(t *testing.T) {
	tr := newKEXResponderTransport(t, crypto.HashSHA256, crypto.AEADAlgAESGCM256, crypto.AsymECDSAP256)
	c := NewContext(DefaultConfig(), localCapsWithAlgorithms(), tr, nil)
	c.algNegotiated = true
	c.negotiated = NegotiatedAlgorithms{
		BaseHash:  crypto.HashSHA256,
		BaseAsym:  crypto.AsymECDSAP256,
		DHEGroup:  crypto.DHEGroupP256,
		AEADSuite: crypto.AEADAlgAESGCM256,
	}
	c.setState(session.Authenticated)

	info, err := c.KeyExchangeAndFinish(context.Background(), 0, wire.MeasHashTypeNone)
	if err != nil {
		t.Fatalf("KeyExchangeAndFinish: %v", err)
	}
	if info.State() != session.Established {
		t.Fatalf("session state = %v, want Established", info.State())
	}
}

func TestKeyExchangeRequiresAuthenticatedFirst(t *testing.T) {
	tr := newFakeTransport()
	c := NewContext(DefaultConfig(), localCapsWithAlgorithms(), tr, nil)
	c.algNegotiated = true
	c.negotiated = NegotiatedAlgorithms{BaseHash: crypto.HashSHA256, BaseAsym: crypto.AsymECDSAP256, DHEGroup: crypto.DHEGroupP256, AEADSuite: crypto.AEADAlgAESGCM256}
	c.setState(session.Negotiated) // one step short of Authenticated

	if _, err := c.KeyExchangeAndFinish(context.Background(), 0, wire.MeasHashTypeNone); err == nil {
		t.Fatal("expected Unsupported before CHALLENGE has authenticated the connection")
	}
}
