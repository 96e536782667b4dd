package wire

// Message codes. Requests carry the high bit set and responses have it
// clear; this codec keeps request/response codes as a flat space since
// the requester always knows which response code it expects for a given
// request (validated in step 6 of every procedure).
const (
	CodeGetVersion      = 0x84
	CodeVersion         = 0x04
	CodeGetCapabilities = 0xE1
	CodeCapabilities    = 0x61
	CodeNegotiateAlgs   = 0xE3
	CodeAlgorithms      = 0x63
	CodeGetDigests      = 0x81
	CodeDigests         = 0x01
	CodeGetCertificate  = 0x82
	CodeCertificate     = 0x02
	CodeChallenge       = 0x83
	CodeChallengeAuth   = 0x03
	CodeKeyExchange     = 0xE4
	CodeKeyExchangeRsp  = 0x64
	CodeFinish          = 0xE5
	CodeFinishRsp       = 0x65
	CodePSKExchange     = 0xE6
	CodePSKExchangeRsp  = 0x66
	CodePSKFinish       = 0xE7
	CodePSKFinishRsp    = 0x67
	CodeKeyUpdate       = 0xE8
	CodeKeyUpdateAck    = 0x68
	CodeHeartbeat       = 0xE9
	CodeHeartbeatAck    = 0x69
	CodeEndSession      = 0xEA
	CodeEndSessionAck   = 0x6A
	CodeRespondIfReady  = 0xFF
	CodeError           = 0x7F
)

// KEY_UPDATE operation codes (param1).
const (
	KeyUpdateOpUpdateKey     = 0x1
	KeyUpdateOpUpdateAllKeys = 0x2
	KeyUpdateOpVerifyNewKey  = 0x3
)

// Measurement-summary-hash-type values accepted by CHALLENGE (param2).
const (
	MeasHashTypeNone = 0x0
	MeasHashTypeTCB  = 0x1
	MeasHashTypeAll  = 0xFF
)

// ERROR codes decoded by the error-response handler (§4.F).
const (
	ErrorCodeInvalidRequest      = 0x01
	ErrorCodeInvalidSession      = 0x02
	ErrorCodeBusy                = 0x03
	ErrorCodeUnexpectedRequest   = 0x04
	ErrorCodeUnspecified         = 0x05
	ErrorCodeDecryptError        = 0x06
	ErrorCodeUnsupportedRequest  = 0x07
	ErrorCodeRequestInFlight     = 0x08
	ErrorCodeInvalidResponseCode = 0x09
	ErrorCodeSessionLimitExceed  = 0x0A
	ErrorCodeSessionRequired     = 0x0B
	ErrorCodeRequestResync       = 0x0C
	ErrorCodeResponseNotReady    = 0x42
	ErrorCodeVendorDefined       = 0xFF
)

// Capability bits negotiated during capability exchange: the two PSK bits
// PSK_EXCHANGE branches on, followed by the per-feature bits.
const (
	PSKCapResponder             = 0x1
	PSKCapResponderWithContext  = 0x2
	CapCHAL                     = 0x1 << 2
	CapMeas                     = 0x1 << 3
	CapKeyExchange              = 0x1 << 4
	CapMutAuth                  = 0x1 << 6
	CapKeyUpdate                = 0x1 << 9
	CapHandshakeInTheClear      = 0x1 << 10
	CapHeartbeat                = 0x1 << 11
	CapEncapRequest             = 0x1 << 12
)
