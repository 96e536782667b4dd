package session

import "errors"

// Session package errors.
var (
	// ErrInvalidSessionID is returned when a session ID is invalid (0 for
	// an active session).
	ErrInvalidSessionID = errors.New("session: invalid session ID")

	// ErrSessionNotFound is returned when a session lookup fails.
	ErrSessionNotFound = errors.New("session: session not found")

	// ErrSessionTableFull is returned when no more sessions can be
	// allocated (§3: "≤ implementation-defined max").
	ErrSessionTableFull = errors.New("session: session table full")

	// ErrSessionIDExhausted is returned when no more requester-side
	// 16-bit session IDs are available.
	ErrSessionIDExhausted = errors.New("session: session ID space exhausted")

	// ErrDuplicateSession is returned when adding a session with an
	// already-live ID (I3).
	ErrDuplicateSession = errors.New("session: duplicate session ID")

	// ErrInvalidState is returned when an operation is attempted in a
	// session State it isn't valid for (e.g. KEY_UPDATE before Established).
	ErrInvalidState = errors.New("session: invalid session state for operation")

	// ErrKeyUpdateInProgress is returned when a second KEY_UPDATE phase-U
	// is attempted before the first has completed (it is not reentrant).
	ErrKeyUpdateInProgress = errors.New("session: key update already in progress")

	// ErrNoKeyUpdateInProgress is returned when VERIFY_NEW_KEY is sent
	// without first marking key_updated via phase U.
	ErrNoKeyUpdateInProgress = errors.New("session: no key update in progress")

	// ErrReplayDetected is returned when an incoming sequence number
	// indicates replay or falls outside the sliding window.
	ErrReplayDetected = errors.New("session: replay detected")
)
