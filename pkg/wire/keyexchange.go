package wire

// KeyExchangeRequest begins ephemeral-DHE session establishment.
// Header.Param1 = meas_hash_type, Header.Param2 = slot_id.
type KeyExchangeRequest struct {
	Header         Header
	SessionPolicy  byte // v1.2+ only; ignored on the wire for earlier versions
	ReqSessionID   uint16
	Random         [NonceSize]byte
	DHEPublic      []byte
	Opaque         []byte
}

func (r KeyExchangeRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.U8(r.SessionPolicy).U8(0).U16(r.ReqSessionID).Fixed(r.Random[:])
	w.Fixed(r.DHEPublic)
	w.VarField(r.Opaque)
	return w.Bytes()
}

// KeyExchangeResponse is the responder's share plus a signature and
// measurement-summary hash bound into the handshake.
type KeyExchangeResponse struct {
	Header             Header
	RspSessionID       uint16
	MutAuthRequested   bool
	SlotMask           byte
	Random             [NonceSize]byte
	DHEPublic          []byte
	MeasurementSummary []byte
	Opaque             []byte
	Signature          []byte
	VerifyData         []byte
	// HMACOffset marks where VerifyData begins, so callers can hash
	// everything before it for the signature-over-transcript check and
	// everything up to VerifyData for the HMAC check (I5).
	HMACOffset int
}

func DecodeKeyExchangeResponse(buf []byte, dheSize, hashSize, sigSize, hmacSize int, limits Limits, hasMeasSummary bool) (*KeyExchangeResponse, error) {
	if buf[1] != CodeKeyExchangeRsp {
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
	mutAuthByte, err := r.U8()
	if err != nil {
		return nil, err
	}
	slotMask, err := r.U8()
	if err != nil {
		return nil, err
	}
	var random [NonceSize]byte
	nb, err := r.Fixed(NonceSize)
	if err != nil {
		return nil, err
	}
	copy(random[:], nb)
	dhePub, err := r.Fixed(dheSize)
	if err != nil {
		return nil, err
	}
	var measSummary []byte
	if hasMeasSummary {
		measSummary, err = r.Fixed(hashSize)
		if err != nil {
			return nil, err
		}
	}
	opaque, err := r.VarField(limits.MaxOpaqueSize)
	if err != nil {
		return nil, err
	}
	sig, err := r.Fixed(sigSize)
	if err != nil {
		return nil, err
	}
	hmacOffset := r.Offset()
	verifyData, err := r.Fixed(hmacSize)
	if err != nil {
		return nil, err
	}
	return &KeyExchangeResponse{
		Header: h, RspSessionID: rspSessionID, MutAuthRequested: mutAuthByte&0x1 != 0,
		SlotMask: slotMask, Random: random, DHEPublic: dhePub,
		MeasurementSummary: measSummary, Opaque: opaque, Signature: sig,
		VerifyData: verifyData, HMACOffset: hmacOffset,
	}, nil
}

// FinishRequest carries an optional mutual-auth signature and the
// requester's HMAC over the handshake transcript.
type FinishRequest struct {
	Header        Header // Param1 bit0 = signature present, Param2 = req_slot_id
	Signature     []byte // only present if mutual auth is in play
	VerifyData    []byte
}

func (r FinishRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.Fixed(r.Signature)
	w.Fixed(r.VerifyData)
	return w.Bytes()
}

// FinishResponse carries the responder's HMAC over the finish transcript.
// When handshake-in-the-clear is negotiated the requester procedure checks
// only the response code and neither decodes nor verifies it.
type FinishResponse struct {
	Header     Header
	VerifyData []byte
}

func DecodeFinishResponse(buf []byte, hmacSize int) (*FinishResponse, error) {
	if buf[1] != CodeFinishRsp {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	vd, err := r.Fixed(hmacSize)
	if err != nil {
		return nil, err
	}
	return &FinishResponse{Header: h, VerifyData: vd}, nil
}
