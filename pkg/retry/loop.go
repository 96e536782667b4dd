package retry

import "time"

// Clock abstracts the sleep the loop performs between attempts so tests
// can run without waiting on a real backoff.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock sleeps for real; the zero value of Loop uses it.
var RealClock Clock = realClock{}

// Loop runs fn up to retryTimes+1 times (P4), retrying only when fn
// returns an error whose Kind is NoResponse. Any other non-nil error,
// including Timeout, is returned immediately without consuming a retry.
type Loop struct {
	RetryTimes int
	Backoff    *Backoff
	Clock      Clock
}

// NewLoop builds a Loop with the given retryTimes and a default
// exponential backoff between attempts.
func NewLoop(retryTimes int) *Loop {
	return &Loop{
		RetryTimes: retryTimes,
		Backoff:    NewBackoff(50*time.Millisecond, 2*time.Second, 2),
		Clock:      RealClock,
	}
}

// Do invokes fn up to RetryTimes+1 times. attempt is 0 on the first call.
func (l *Loop) Do(op string, fn func(attempt int) error) error {
	clock := l.Clock
	if clock == nil {
		clock = RealClock
	}
	if l.Backoff != nil {
		l.Backoff.Reset()
	}

	var lastErr error
	for attempt := 0; attempt <= l.RetryTimes; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !KindOf(err).Retryable() {
			return err
		}
		if attempt == l.RetryTimes {
			break
		}
		if l.Backoff != nil {
			clock.Sleep(l.Backoff.Duration())
		}
	}
	return lastErr
}
