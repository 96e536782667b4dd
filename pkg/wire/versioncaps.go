package wire

// GetVersionRequest carries no body beyond the header.
type GetVersionRequest struct {
	Header Header
}

func (r GetVersionRequest) Encode() []byte {
	return NewWriter(r.Header).Bytes()
}

// VersionEntry is one supported-version entry in a VERSION response.
type VersionEntry struct {
	Major, Minor, UpdateVersion, Alpha byte
}

// VersionResponse lists every SPDM version the responder supports.
type VersionResponse struct {
	Header   Header
	Versions []VersionEntry
}

func DecodeVersionResponse(buf []byte) (*VersionResponse, error) {
	if buf[1] != CodeVersion {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	if _, err := r.U8(); err != nil { // reserved
		return nil, err
	}
	count, err := r.U8()
	if err != nil {
		return nil, err
	}
	entries := make([]VersionEntry, 0, count)
	for i := byte(0); i < count; i++ {
		lo, err := r.U8()
		if err != nil {
			return nil, err
		}
		hi, err := r.U8()
		if err != nil {
			return nil, err
		}
		entries = append(entries, VersionEntry{
			UpdateVersion: lo & 0x0F,
			Alpha:         lo >> 4,
			Minor:         hi & 0x0F,
			Major:         hi >> 4,
		})
	}
	return &VersionResponse{Header: h, Versions: entries}, nil
}

// GetCapabilitiesRequest advertises the requester's own capability bitset.
type GetCapabilitiesRequest struct {
	Header       Header
	CTExponent   byte
	Capabilities uint32
}

func (r GetCapabilitiesRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.U8(r.CTExponent).U16(0).U32(r.Capabilities)
	return w.Bytes()
}

// CapabilitiesResponse is the responder's matching capability bitset.
type CapabilitiesResponse struct {
	Header       Header
	CTExponent   byte
	Capabilities uint32
}

func DecodeCapabilitiesResponse(buf []byte) (*CapabilitiesResponse, error) {
	if buf[1] != CodeCapabilities {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	ct, err := r.U8()
	if err != nil {
		return nil, err
	}
	if _, err := r.U16(); err != nil {
		return nil, err
	}
	caps, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &CapabilitiesResponse{Header: h, CTExponent: ct, Capabilities: caps}, nil
}

// NegotiateAlgorithmsRequest proposes one algorithm per category.
type NegotiateAlgorithmsRequest struct {
	Header           Header
	BaseHash         byte
	BaseAsym         byte
	MeasurementHash  byte
	DHEGroup         byte
	AEADSuite        byte
	KeySchedule      byte
}

func (r NegotiateAlgorithmsRequest) Encode() []byte {
	w := NewWriter(r.Header)
	w.U8(r.BaseAsym).U8(r.BaseHash).U8(r.DHEGroup).U8(r.AEADSuite).U8(r.KeySchedule).U8(r.MeasurementHash)
	return w.Bytes()
}

// AlgorithmsResponse is the responder's chosen algorithm for each category,
// exactly one bit set per spec.md §3 ("exactly one each").
type AlgorithmsResponse struct {
	Header          Header
	BaseHash        byte
	BaseAsym        byte
	MeasurementHash byte
	DHEGroup        byte
	AEADSuite       byte
	KeySchedule     byte
}

func DecodeAlgorithmsResponse(buf []byte) (*AlgorithmsResponse, error) {
	if buf[1] != CodeAlgorithms {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	asym, err := r.U8()
	if err != nil {
		return nil, err
	}
	hash, err := r.U8()
	if err != nil {
		return nil, err
	}
	dhe, err := r.U8()
	if err != nil {
		return nil, err
	}
	aead, err := r.U8()
	if err != nil {
		return nil, err
	}
	ks, err := r.U8()
	if err != nil {
		return nil, err
	}
	measHash, err := r.U8()
	if err != nil {
		return nil, err
	}
	return &AlgorithmsResponse{
		Header: h, BaseAsym: asym, BaseHash: hash, DHEGroup: dhe,
		AEADSuite: aead, KeySchedule: ks, MeasurementHash: measHash,
	}, nil
}
