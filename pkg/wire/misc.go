package wire

// KeyUpdateRequest drives both phases of the key-update dance.
// Header.Param1 = operation (KeyUpdateOp*), Header.Param2 = a random byte;
// callers must not reuse a fixed sentinel value here, only draw fresh
// randomness per send.
type KeyUpdateRequest struct {
	Header Header
}

func (r KeyUpdateRequest) Encode() []byte {
	return NewWriter(r.Header).Bytes()
}

// KeyUpdateAckResponse echoes the request's operation and random byte.
type KeyUpdateAckResponse struct {
	Header Header
}

func DecodeKeyUpdateAckResponse(buf []byte) (*KeyUpdateAckResponse, error) {
	if buf[1] != CodeKeyUpdateAck {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	return &KeyUpdateAckResponse{Header: h}, nil
}

// HeartbeatRequest has no body.
type HeartbeatRequest struct {
	Header Header
}

func (r HeartbeatRequest) Encode() []byte {
	return NewWriter(r.Header).Bytes()
}

type HeartbeatAckResponse struct {
	Header Header
}

func DecodeHeartbeatAckResponse(buf []byte) (*HeartbeatAckResponse, error) {
	if buf[1] != CodeHeartbeatAck {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	return &HeartbeatAckResponse{Header: h}, nil
}

// EndSessionRequest tears a session down. Header.Param1 carries the
// end-session attribute byte (e.g. a "preserve state" bit).
type EndSessionRequest struct {
	Header Header
}

func (r EndSessionRequest) Encode() []byte {
	return NewWriter(r.Header).Bytes()
}

type EndSessionAckResponse struct {
	Header Header
}

func DecodeEndSessionAckResponse(buf []byte) (*EndSessionAckResponse, error) {
	if buf[1] != CodeEndSessionAck {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	return &EndSessionAckResponse{Header: h}, nil
}

// RespondIfReadyRequest re-polls after a ResponseNotReady error, echoing
// the token and original request code the error carried.
type RespondIfReadyRequest struct {
	Header         Header // Param1 = original request code, Param2 = token
	OriginalCode   byte
	Token          byte
}

func (r RespondIfReadyRequest) Encode() []byte {
	return NewWriter(r.Header).Bytes()
}

// ErrorResponse is the generic ERROR frame every procedure may receive
// instead of its expected response code.
type ErrorResponse struct {
	Header       Header // Param1 = error_code, Param2 = error_data
	ExtendedData []byte
}

func (e *ErrorResponse) Code() byte { return e.Header.Param1 }
func (e *ErrorResponse) Data() byte { return e.Header.Param2 }

// ResponseNotReadyData is the extended_data payload carried by an ERROR
// frame whose error_code is ResponseNotReady.
type ResponseNotReadyData struct {
	RDTExponent byte
	RequestCode byte
	Token       byte
	RDT         uint16
}

func DecodeErrorResponse(buf []byte) (*ErrorResponse, error) {
	if buf[1] != CodeError {
		return nil, ErrUnexpected
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	r := NewReader(buf)
	return &ErrorResponse{Header: h, ExtendedData: r.Rest()}, nil
}

func DecodeResponseNotReadyData(ext []byte) (*ResponseNotReadyData, error) {
	if len(ext) < 4 {
		return nil, ErrMalformed
	}
	return &ResponseNotReadyData{
		RDTExponent: ext[0],
		RequestCode: ext[1],
		Token:       ext[2],
		RDT:         uint16(ext[3]),
	}, nil
}
