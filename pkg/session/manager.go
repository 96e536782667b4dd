package session

import (
	"github.com/spdmgo/requester/pkg/crypto"
)

// Manager is the top-level entry point Component E calls into for
// everything session-table-shaped (§4.D): allocating a fresh id before a
// KEY_EXCHANGE/PSK_EXCHANGE request goes out, binding the responder's half
// and promoting the session once a reply and handshake finish, and freeing
// it on END_SESSION or a fatal error.
type Manager struct {
	table         *Table
	hashAlg       crypto.HashAlg
	transcriptCap int
}

// NewManager wraps a Table with the hash algorithm and transcript capacity
// every session it creates should use, both fixed for the lifetime of a
// negotiated connection (§3: negotiated_algorithms is set once, at
// NEGOTIATE_ALGORITHMS, and does not change per session).
func NewManager(maxSessions int, hashAlg crypto.HashAlg, transcriptCap int) *Manager {
	return &Manager{
		table:         NewTable(maxSessions),
		hashAlg:       hashAlg,
		transcriptCap: transcriptCap,
	}
}

// Begin allocates a requester session ID and registers a tentative Info in
// state NotStarted, as happens immediately before a KEY_EXCHANGE or
// PSK_EXCHANGE request is built and sent.
func (m *Manager) Begin(typ Type) (*Info, error) {
	id, err := m.table.AllocateReqSessionID()
	if err != nil {
		return nil, err
	}
	info := NewInfo(id, typ, m.hashAlg, m.transcriptCap)
	if err := m.table.Add(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Find looks up a live session by its requester-chosen ID half.
func (m *Manager) Find(reqSessionID uint16) (*Info, bool) {
	return m.table.Find(reqSessionID)
}

// FindByComposite looks up a live session by the full 32-bit session_id
// carried on encrypted-message headers (§6).
func (m *Manager) FindByComposite(compositeID uint32) (*Info, bool) {
	return m.table.FindByComposite(compositeID)
}

// Free zeroizes a session's key material and removes it from the table,
// the steps an END_SESSION exchange (success or error) must both perform.
func (m *Manager) Free(reqSessionID uint16) {
	info, ok := m.table.Find(reqSessionID)
	if !ok {
		return
	}
	info.Terminate()
	m.table.Remove(reqSessionID)
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	return m.table.Count()
}

// IsFull reports whether a new session can currently be started.
func (m *Manager) IsFull() bool {
	return m.table.IsFull()
}
