// Package requester implements the requester-side state machine of §4.E:
// one procedure per SPDM exchange, each wrapped in the retry/backoff and
// ResponseNotReady-polling policy of §4.F, operating over the codec,
// transcript, crypto, and session-table components the sibling packages
// provide.
package requester

import (
	"io"
	"time"

	"github.com/pion/logging"

	"github.com/spdmgo/requester/pkg/crypto"
)

// Config bundles the tunables every public procedure reads, mirroring the
// teacher's *Config-struct-plus-NewX convention (e.g. im.ClientConfig):
// zero-value fields fall back to sane defaults in DefaultConfig, and the
// embedding only overrides what it cares about.
type Config struct {
	// RetryTimes bounds public-procedure retries beyond the first attempt
	// (P4: retry_times+1 total attempts), consuming only NoResponse.
	RetryTimes int

	// MaxPollBudget bounds RESPOND_IF_READY round trips per call (§4.F).
	MaxPollBudget int

	// SessionMaxCount is the live-session ceiling (§3).
	SessionMaxCount int

	// TranscriptBufferCap bounds each of the A/B/C/M1M2/K buffers (§4.B).
	TranscriptBufferCap int

	// MaxPSKHintSize bounds the PSK hint this requester will send
	// (§6: "max PSK hint = 16 (configurable)").
	MaxPSKHintSize int

	// RequestTimeout bounds a single send/receive round trip before the
	// transport itself reports Timeout.
	RequestTimeout time.Duration

	// CTExponent is advertised in GET_CAPABILITIES and used to size the
	// responder's expected processing time for RDT computations.
	CTExponent byte

	// Rand supplies randomness for nonces and KEY_UPDATE's random param2
	// bytes. Defaults to crypto/rand.Reader; tests inject a
	// deterministic source.
	Rand io.Reader

	// LoggerFactory creates named loggers for each procedure. If nil,
	// logging is disabled, matching the teacher's nil-safe logger
	// convention.
	LoggerFactory logging.LoggerFactory
}

// DefaultConfig returns a Config with conservative, spec-reasonable
// defaults for every field a caller doesn't set explicitly.
func DefaultConfig() Config {
	return Config{
		RetryTimes:          3,
		MaxPollBudget:       8,
		SessionMaxCount:     4,
		TranscriptBufferCap: 64 * 1024,
		MaxPSKHintSize:      16,
		RequestTimeout:      5 * time.Second,
		CTExponent:          12,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RetryTimes == 0 {
		c.RetryTimes = d.RetryTimes
	}
	if c.MaxPollBudget == 0 {
		c.MaxPollBudget = d.MaxPollBudget
	}
	if c.SessionMaxCount == 0 {
		c.SessionMaxCount = d.SessionMaxCount
	}
	if c.TranscriptBufferCap == 0 {
		c.TranscriptBufferCap = d.TranscriptBufferCap
	}
	if c.MaxPSKHintSize == 0 {
		c.MaxPSKHintSize = d.MaxPSKHintSize
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.CTExponent == 0 {
		c.CTExponent = d.CTExponent
	}
	return c
}

// NegotiatedAlgorithms is the single choice per category ALGORITHMS
// settles on (§3: "exactly one each").
type NegotiatedAlgorithms struct {
	BaseHash        crypto.HashAlg
	BaseAsym        crypto.AsymAlg
	MeasurementHash byte // wire.MeasHashType*; not every value implies hashing
	DHEGroup        crypto.DHEGroup
	AEADSuite       crypto.AEADAlg
	KeySchedule     byte
}

// wireBytes returns the six single-byte wire values NEGOTIATE_ALGORITHMS
// proposes, in the order wire.NegotiateAlgorithmsRequest expects.
func (n NegotiatedAlgorithms) wireBytes() (hash, asym, dhe, aead, ks byte) {
	return byte(n.BaseHash), byte(n.BaseAsym), byte(n.DHEGroup), byte(n.AEADSuite), n.KeySchedule
}

// LocalCapabilities is what this requester advertises in GET_CAPABILITIES,
// the candidate set NegotiateAlgorithms proposes from.
type LocalCapabilities struct {
	Capabilities     uint32
	SupportedHashes  []crypto.HashAlg
	SupportedAsyms   []crypto.AsymAlg
	SupportedDHE     []crypto.DHEGroup
	SupportedAEAD    []crypto.AEADAlg
	SupportedKeySchd []byte
}
