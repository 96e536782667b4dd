package wire

// PSKExchangeRequest identifies the pre-shared secret via an opaque hint
// instead of negotiating one through DHE.
type PSKExchangeRequest struct {
	Header        Header // Param1 = meas_hash_type
	SessionPolicy byte
	ReqSessionID  uint16
	Random        [NonceSize]byte
	PSKHint       []byte
	Context       []byte // PSKContextSize, or empty to let the responder pick
	Opaque        []byte
}

func (r PSKExchangeRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.U8(r.SessionPolicy).U8(0).U16(r.ReqSessionID).Fixed(r.Random[:])
	w.VarField(r.PSKHint)
	w.VarField(r.Context)
	w.VarField(r.Opaque)
	return w.Bytes()
}

// PSKExchangeResponse carries the responder's session id and context, plus
// an HMAC verify_data binding the exchange (no signature: PSK has no asym
// key to sign with).
type PSKExchangeResponse struct {
	Header       Header
	RspSessionID uint16
	Random       [NonceSize]byte
	Context      []byte
	Opaque       []byte
	VerifyData   []byte
	HMACOffset   int
}

func DecodePSKExchangeResponse(buf []byte, hmacSize int, limits Limits) (*PSKExchangeResponse, error) {
	if buf[1] != CodePSKExchangeRsp {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	rspSessionID, err := r.U16()
	if err != nil {
		return nil, err
	}
	if _, err := r.U16(); err != nil { // reserved
		return nil, err
	}
	var random [NonceSize]byte
	nb, err := r.Fixed(NonceSize)
	if err != nil {
		return nil, err
	}
	copy(random[:], nb)
	context, err := r.VarField(PSKContextSize)
	if err != nil {
		return nil, err
	}
	opaque, err := r.VarField(limits.MaxOpaqueSize)
	if err != nil {
		return nil, err
	}
	hmacOffset := r.Offset()
	vd, err := r.Fixed(hmacSize)
	if err != nil {
		return nil, err
	}
	return &PSKExchangeResponse{
		Header: h, RspSessionID: rspSessionID, Random: random,
		Context: context, Opaque: opaque, VerifyData: vd, HMACOffset: hmacOffset,
	}, nil
}

// PSKFinishRequest carries the requester's HMAC, used only when the
// responder advertised PSK_CAP_RESPONDER_WITH_CONTEXT.
type PSKFinishRequest struct {
	Header     Header
	VerifyData []byte
}

func (r PSKFinishRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.Fixed(r.VerifyData)
	return w.Bytes()
}

// PSKFinishResponse has no body beyond the header on success.
type PSKFinishResponse struct {
	Header Header
}

func DecodePSKFinishResponse(buf []byte) (*PSKFinishResponse, error) {
	if buf[1] != CodePSKFinishRsp {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	return &PSKFinishResponse{Header: h}, nil
}
