package session

import (
	"sync"

	"github.com/pion/transport/v3/replaydetector"
)

// replayWindowSize bounds how far out of order an accepted sequence number
// may be, wide enough to tolerate reordering without masking a genuine
// replay.
const replayWindowSize = 128

// ReplayWindow wraps a per-direction pion/transport replay detector, the
// same primitive the teacher's secure transport uses for its unicast
// sessions, reused here as a per-direction sequence-number replay check
// for accepting a session message.
type ReplayWindow struct {
	mu    sync.Mutex
	inner replaydetector.ReplayDetector
}

// NewReplayWindow creates a window that never lets sequence numbers above
// maxSeq.
func NewReplayWindow(maxSeq uint64) *ReplayWindow {
	return &ReplayWindow{inner: replaydetector.New(replayWindowSize, maxSeq)}
}

// Check reports whether seq is acceptable (not a replay and within the
// window). On acceptance it returns an accept func the caller must invoke
// once the message has otherwise verified, committing seq into the window;
// declining to call accept (e.g. because the AEAD tag failed) leaves the
// window unchanged.
func (w *ReplayWindow) Check(seq uint64) (accept func(), ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	markOk, ok := w.inner.Check(seq)
	if !ok {
		return nil, false
	}
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		markOk()
	}, true
}
