// Package watchdog implements the per-session deadline timer of §4.G: a
// cooperative timer that, on expiry, invokes a stop callback and otherwise
// does not interpret protocol state. It mirrors the shape of the teacher's
// per-exchange retransmit timer (one time.AfterFunc entry per key, guarded
// by a mutex, with Stop/reset/disarm operations) adapted from "retry this
// message" to "kill this session".
package watchdog

import (
	"sync"
	"time"
)

// StopCallback is invoked on expiry with the session that timed out and
// the attributes to report on the EndSession it triggers. It must be safe
// to call without the watchdog holding any lock, and must itself be
// reentrant against the session table (§4.G, §5).
type StopCallback func(sessionID uint32, endAttributes byte)

type entry struct {
	timer         *time.Timer
	endAttributes byte
}

// Watchdog tracks one cooperative timer per session id.
type Watchdog struct {
	mu       sync.Mutex
	entries  map[uint32]*entry
	callback StopCallback
}

// New creates a Watchdog that invokes callback on any session's expiry.
func New(callback StopCallback) *Watchdog {
	return &Watchdog{
		entries:  make(map[uint32]*entry),
		callback: callback,
	}
}

// Arm starts a timer for sessionID that fires stop after d, carrying
// endAttributes through to the callback. Arming an already-armed session
// replaces its timer.
func (w *Watchdog) Arm(sessionID uint32, d time.Duration, endAttributes byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked(sessionID)
	e := &entry{endAttributes: endAttributes}
	e.timer = time.AfterFunc(d, func() { w.fire(sessionID) })
	w.entries[sessionID] = e
}

// Reset cancels and re-arms sessionID's timer for another d, used on every
// successful exchange within a session to push the deadline out. It is a
// no-op if the session isn't armed.
func (w *Watchdog) Reset(sessionID uint32, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[sessionID]
	if !ok {
		return
	}
	e.timer.Stop()
	attrs := e.endAttributes
	ne := &entry{endAttributes: attrs}
	ne.timer = time.AfterFunc(d, func() { w.fire(sessionID) })
	w.entries[sessionID] = ne
}

// Disarm stops sessionID's timer permanently, called on END_SESSION or any
// session teardown.
func (w *Watchdog) Disarm(sessionID uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked(sessionID)
}

func (w *Watchdog) stopLocked(sessionID uint32) {
	if e, ok := w.entries[sessionID]; ok {
		e.timer.Stop()
		delete(w.entries, sessionID)
	}
}

func (w *Watchdog) fire(sessionID uint32) {
	w.mu.Lock()
	e, ok := w.entries[sessionID]
	if ok {
		delete(w.entries, sessionID)
	}
	w.mu.Unlock()
	if !ok || w.callback == nil {
		return
	}
	w.callback(sessionID, e.endAttributes)
}

// Armed reports whether sessionID currently has a live timer, for tests
// and diagnostics.
func (w *Watchdog) Armed(sessionID uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[sessionID]
	return ok
}
