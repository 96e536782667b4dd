// Package crypto is the uniform façade over hash, HMAC, asymmetric verify,
// DHE key agreement, AEAD, and randomness that §4.C describes. Every
// operation is parameterized by a negotiated algorithm identifier rather
// than hardcoding one suite, so the requester state machine never imports
// a concrete cipher package directly.
package crypto

import "errors"

var (
	// ErrUnsupported is returned when an algorithm identifier isn't one of
	// the façade's known suites, or a key/parameter size mismatches it.
	ErrUnsupported = errors.New("crypto: unsupported algorithm or parameter size")
	// ErrVerifyFailed is returned by asymmetric signature or HMAC checks
	// that do not match.
	ErrVerifyFailed = errors.New("crypto: verification failed")
)
