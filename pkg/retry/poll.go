package retry

import "time"

// DefaultMaxPollBudget bounds how many RESPOND_IF_READY round trips a
// single public procedure call will make before giving up, regardless of
// what the responder keeps asking for (§4.F: "counts against a max_poll
// budget").
const DefaultMaxPollBudget = 8

// maxResponseNotReadyDelay caps the sleep computed from a ResponseNotReady
// error's RDT/RDTExponent, so a misbehaving or malicious responder can't
// stall a caller indefinitely with an inflated exponent.
const maxResponseNotReadyDelay = 30 * time.Second

// ResponseNotReadyDelay computes the sleep interval a ResponseNotReady
// error's RDT and RDTExponent fields specify: rdt * 2^rdtExponent
// hundred-microsecond units, capped at maxResponseNotReadyDelay.
func ResponseNotReadyDelay(rdt uint8, rdtExponent uint8) time.Duration {
	const unit = 100 * time.Microsecond
	shift := rdtExponent
	if shift > 20 {
		shift = 20 // guard the left shift against overflow
	}
	delay := unit * time.Duration(rdt) * time.Duration(uint64(1)<<shift)
	if delay > maxResponseNotReadyDelay || delay <= 0 {
		return maxResponseNotReadyDelay
	}
	return delay
}

// PollBudget tracks the remaining RESPOND_IF_READY round trips for one
// public procedure call.
type PollBudget struct {
	remaining int
}

// NewPollBudget creates a budget allowing up to max polls.
func NewPollBudget(max int) *PollBudget {
	if max <= 0 {
		max = DefaultMaxPollBudget
	}
	return &PollBudget{remaining: max}
}

// Consume reports whether another RESPOND_IF_READY round trip is allowed,
// decrementing the budget if so.
func (p *PollBudget) Consume() bool {
	if p.remaining <= 0 {
		return false
	}
	p.remaining--
	return true
}
