package retry

import (
	"time"

	cenkalti "github.com/cenkalti/backoff"
)

// Backoff computes the inter-attempt delay the outer retry loop waits
// before resending after a NoResponse classification, the same
// exponential-plus-jitter shape the teacher's MRP retransmitter uses for
// its own backoff, generalized here to plain min/max/factor parameters
// since this protocol has no MRP-specific constants.
type Backoff struct {
	inner *cenkalti.Backoff
}

// NewBackoff builds a Backoff bounded to [min, max], growing by factor per
// attempt, with jitter enabled so concurrent requesters on a shared bus
// don't retry in lockstep.
func NewBackoff(min, max time.Duration, factor float64) *Backoff {
	return &Backoff{inner: &cenkalti.Backoff{
		Min:    min,
		Max:    max,
		Factor: factor,
		Jitter: true,
	}}
}

// Duration returns the delay for the next attempt and advances the
// internal attempt counter.
func (b *Backoff) Duration() time.Duration {
	return b.inner.Duration()
}

// Reset zeroes the attempt counter, called at the start of each new
// public-procedure retry loop so one call's backoff state never leaks
// into the next.
func (b *Backoff) Reset() {
	b.inner.Reset()
}
