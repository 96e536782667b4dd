package crypto

import (
	"crypto/hmac"
)

// HMAC computes the keyed MAC of message under h's algorithm, implementing
// the façade's hmac(alg, key, msg) operation.
func (h Hash) HMAC(key, message []byte) []byte {
	mac := hmac.New(h.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// VerifyHMAC reports whether the supplied mac matches message under key,
// comparing in constant time. A false return should map to
// ErrVerifyFailed (SecurityViolation) by the caller.
func (h Hash) VerifyHMAC(key, message, mac []byte) bool {
	return hmac.Equal(h.HMAC(key, message), mac)
}
