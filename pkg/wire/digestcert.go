package wire

// GetDigestsRequest has no body beyond the header.
type GetDigestsRequest struct {
	Header Header
}

func (r GetDigestsRequest) Encode() []byte {
	return NewWriter(r.Header).Bytes()
}

// DigestsResponse carries one hash-sized digest per provisioned slot;
// SlotMask has a bit set for each populated slot.
type DigestsResponse struct {
	Header   Header
	SlotMask byte
	Digests  [][]byte
}

func DecodeDigestsResponse(buf []byte, hashSize, limit int) (*DigestsResponse, error) {
	if buf[1] != CodeDigests {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	slotMask := h.Param2
	r := NewReader(buf)
	var digests [][]byte
	for slot := 0; slot < 8; slot++ {
		if slotMask&(1<<uint(slot)) == 0 {
			continue
		}
		d, err := r.Fixed(hashSize)
		if err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	if len(digests) > limit {
		return nil, ErrMalformed
	}
	return &DigestsResponse{Header: h, SlotMask: slotMask, Digests: digests}, nil
}

// GetCertificateRequest asks for a chunk of one slot's certificate chain.
type GetCertificateRequest struct {
	Header Header // Param1 low nibble = slot_id
	Offset uint16
	Length uint16
}

func (r GetCertificateRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.U16(r.Offset).U16(r.Length)
	return w.Bytes()
}

// CertificateResponse is one chunk of a slot's certificate chain.
type CertificateResponse struct {
	Header        Header
	PortionLength uint16
	RemainderLen  uint16
	CertChain     []byte
}

func DecodeCertificateResponse(buf []byte, maxCertChain int) (*CertificateResponse, error) {
	if buf[1] != CodeCertificate {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	portion, err := r.U16()
	if err != nil {
		return nil, err
	}
	remainder, err := r.U16()
	if err != nil {
		return nil, err
	}
	chain, err := r.Fixed(int(portion))
	if err != nil {
		return nil, err
	}
	if int(portion)+int(remainder) > maxCertChain {
		return nil, ErrMalformed
	}
	return &CertificateResponse{
		Header: h, PortionLength: portion, RemainderLen: remainder, CertChain: chain,
	}, nil
}

// ChallengeRequest carries the requester's nonce for the challenge exchange.
// Header.Param1 = slot_id (or 0xFF), Header.Param2 = meas_hash_type.
type ChallengeRequest struct {
	Header Header
	Nonce  [NonceSize]byte
}

func (r ChallengeRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.Fixed(r.Nonce[:])
	return w.Bytes()
}

// ChallengeAuthResponse is the signed challenge-auth reply.
// Header.Param1 low nibble = slot-mask low nibble; high nibble carries the
// BASIC_MUT_AUTH_REQ bit.
type ChallengeAuthResponse struct {
	Header             Header
	CertChainHash      []byte
	Nonce              [NonceSize]byte
	MeasurementSummary []byte
	Opaque             []byte
	Signature          []byte
	// SigOffset is the offset into the original buffer where Signature
	// begins; callers need this to compute "transcript up to but not
	// including the signature" (I5) without re-serializing.
	SigOffset int
}

const basicMutAuthReqBit = 0x80

func (r *ChallengeAuthResponse) BasicMutAuthRequested() bool {
	return r.Header.Param1&basicMutAuthReqBit != 0
}

func (r *ChallengeAuthResponse) SlotMaskLowNibble() byte {
	return r.Header.Param1 & 0x0F
}

func DecodeChallengeAuthResponse(buf []byte, hashSize, sigSize int, limits Limits, hasMeasSummary bool) (*ChallengeAuthResponse, error) {
	if buf[1] != CodeChallengeAuth {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	certHash, err := r.Fixed(hashSize)
	if err != nil {
		return nil, err
	}
	var nonce [NonceSize]byte
	nb, err := r.Fixed(NonceSize)
	if err != nil {
		return nil, err
	}
	copy(nonce[:], nb)
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
	sigOffset := r.Offset()
	sig, err := r.Fixed(sigSize)
	if err != nil {
		return nil, err
	}
	return &ChallengeAuthResponse{
		Header: h, CertChainHash: certHash, Nonce: nonce,
		MeasurementSummary: measSummary, Opaque: opaque, Signature: sig,
		SigOffset: sigOffset,
	}, nil
}
