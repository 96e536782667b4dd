package transcript

import "github.com/spdmgo/requester/pkg/wire"

// ResetFor returns the buffers that must be cleared before building a
// request with the given code, so retries always start from an identical
// transcript (§4.B "Reset policy").
func ResetFor(code byte) []ID {
	switch code {
	case wire.CodeGetVersion:
		return []ID{A, B, C}
	case wire.CodeGetCapabilities, wire.CodeNegotiateAlgs:
		return []ID{A}
	case wire.CodeGetDigests, wire.CodeGetCertificate:
		return []ID{B}
	case wire.CodeChallenge:
		return []ID{C}
	default:
		return nil
	}
}

// ResetBefore clears every buffer named by ResetFor(code) in s.
func ResetBefore(s *Set, code byte) {
	for _, id := range ResetFor(code) {
		s.Get(id).Reset()
	}
}
