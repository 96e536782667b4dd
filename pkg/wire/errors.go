package wire

import "errors"

var (
	// ErrMalformed is returned when a declared length exceeds either the
	// remaining buffer or the field's configured maximum.
	ErrMalformed = errors.New("wire: malformed message")

	// ErrUnexpected is returned when a message code is not one the decoder
	// for the current context recognizes.
	ErrUnexpected = errors.New("wire: unexpected message code")
)

// Limits collects the per-field maximums the codec enforces at decode time.
// Fixed wire-layout constants from §6; MaxPSKHint is configurable by the
// embedder (defaults to 16).
type Limits struct {
	MaxOpaqueSize  int
	MaxHashSize    int
	MaxPSKHintSize int
	MaxCertChain   int
}

// DefaultLimits returns the fixed constants from the wire layout, with
// MaxPSKHintSize at its configurable default.
func DefaultLimits() Limits {
	return Limits{
		MaxOpaqueSize:  1024,
		MaxHashSize:    64,
		MaxPSKHintSize: 16,
		MaxCertChain:   65535,
	}
}

const (
	// NonceSize is the fixed size of every protocol nonce.
	NonceSize = 32
	// PSKContextSize is the fixed size of the PSK context field.
	PSKContextSize = 32
)
